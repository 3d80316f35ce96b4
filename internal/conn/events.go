package conn

// Listener receives lifecycle events from the manager. Implementations must
// return quickly; events are delivered synchronously from the control loop.
//
// Every transition that changes the externally visible status fires exactly
// one OnStatusChange; repeated ticks in the same state produce no duplicate
// events.
type Listener interface {
	OnStatusChange(from, to Status)
	OnConnect()
	OnDisconnect()
	OnConfigModeStart()
	OnConfigModeEnd()
}

// BaseListener is a no-op Listener. Embed it to implement only the events
// you care about.
type BaseListener struct{}

func (BaseListener) OnStatusChange(from, to Status) {}
func (BaseListener) OnConnect()                     {}
func (BaseListener) OnDisconnect()                  {}
func (BaseListener) OnConfigModeStart()             {}
func (BaseListener) OnConfigModeEnd()               {}
