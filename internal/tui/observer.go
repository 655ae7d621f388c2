package tui

// ProgressObserver adapts domain.ProgressFunc to a channel for Bubble Tea.
type ProgressObserver struct {
	ch chan SyncProgressMsg
}

// NewProgressObserver creates a new channel-based progress observer.
func NewProgressObserver() *ProgressObserver {
	return &ProgressObserver{ch: make(chan SyncProgressMsg, 1)}
}

// OnProgress sends progress to the channel, replacing an unread update.
func (o *ProgressObserver) OnProgress(loaded, total int) {
	select {
	case <-o.ch:
	default:
	}
	select {
	case o.ch <- SyncProgressMsg{Loaded: loaded, Total: total}:
	default: // Non-blocking if channel full
	}
}
