package services

// PullCompletedEvent is published after every finished pull-sync run,
// successful or not.
type PullCompletedEvent struct {
	Result PullResult
	Err    error
}

// WriteBackCompletedEvent is published after a targeted write-back.
type WriteBackCompletedEvent struct {
	Result WriteBackResult
}

// ArchiveCompletedEvent is published after an archival sweep.
type ArchiveCompletedEvent struct {
	Result ArchiveResult
}
