package mqtt

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// defaultClientID derives a stable MQTT client ID from the machine
// identity. Returns empty when the platform provides none, leaving the
// broker to assign one.
func defaultClientID() string {
	id, err := machineid.ProtectedID("termlink")
	if err != nil {
		glog.V(1).Infof("machine id unavailable: %v", err)
		return ""
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return "termlink-" + id
}
