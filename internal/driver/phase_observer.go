package driver

import "time"

// FileStatus is the state of one source file in a tree translation.
type FileStatus int

const (
	FileQueued FileStatus = iota
	FileWorking
	FileDone
	FileFailed
)

func (s FileStatus) String() string {
	switch s {
	case FileQueued:
		return "queued"
	case FileWorking:
		return "working"
	case FileDone:
		return "done"
	case FileFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent describes a file changing state.
type ProgressEvent struct {
	Path    string
	Status  FileStatus
	Elapsed time.Duration
	Err     error
	Done    int // files finished so far, including this one
	Total   int
}

// ProgressObserver receives events from TranslateTree. Calls are serialised.
type ProgressObserver func(ProgressEvent)
