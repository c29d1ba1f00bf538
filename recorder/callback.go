// SPDX-License-Identifier: EPL-2.0

package recorder

// Callback receives the lifecycle events of a backend. Lifecycle methods run
// on the goroutine that drove the transition, except the error and stop
// raised by a failed write, which run on a goroutine of their own.
// OnRecordProgress runs on the progress goroutine.
//
// Implementations must not call back into the backend synchronously.
type Callback interface {
	OnPrepareRecord()
	OnStartRecord(path string)
	OnPauseRecord()
	OnRecordProgress(elapsedMs int64, amp int)
	OnStopRecord(path string)
	OnError(err error)
}

// CallbackFuncs adapts plain functions to Callback. Nil fields are skipped.
type CallbackFuncs struct {
	Prepare  func()
	Start    func(path string)
	Pause    func()
	Progress func(elapsedMs int64, amp int)
	Stop     func(path string)
	Error    func(err error)
}

func (f CallbackFuncs) OnPrepareRecord() {
	if f.Prepare != nil {
		f.Prepare()
	}
}

func (f CallbackFuncs) OnStartRecord(path string) {
	if f.Start != nil {
		f.Start(path)
	}
}

func (f CallbackFuncs) OnPauseRecord() {
	if f.Pause != nil {
		f.Pause()
	}
}

func (f CallbackFuncs) OnRecordProgress(elapsedMs int64, amp int) {
	if f.Progress != nil {
		f.Progress(elapsedMs, amp)
	}
}

func (f CallbackFuncs) OnStopRecord(path string) {
	if f.Stop != nil {
		f.Stop(path)
	}
}

func (f CallbackFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}
