// SPDX-License-Identifier: EPL-2.0

package session

import "github.com/ik5/audwave/store"

// Observer follows the active recording. Stop events reach observers in
// reverse registration order, every other event in registration order.
//
// Observers are compared by identity when removed, so register pointers.
type Observer interface {
	OnPrepareRecord()
	OnStartRecord(path string)
	OnPauseRecord()
	OnRecordingProgress(elapsedMs int64, amp int)
	// OnStopRecord carries the record as persisted, or the stored copy when
	// saving failed. rec is nil when the record could not be read at all.
	OnStopRecord(path string, rec *store.Record)
	OnRecordProcessing()
	OnRecordFinishProcessing()
	OnError(err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Prepare          func()
	Start            func(path string)
	Pause            func()
	Progress         func(elapsedMs int64, amp int)
	Stop             func(path string, rec *store.Record)
	Processing       func()
	FinishProcessing func()
	Error            func(err error)
}

func (f *ObserverFuncs) OnPrepareRecord() {
	if f.Prepare != nil {
		f.Prepare()
	}
}

func (f *ObserverFuncs) OnStartRecord(path string) {
	if f.Start != nil {
		f.Start(path)
	}
}

func (f *ObserverFuncs) OnPauseRecord() {
	if f.Pause != nil {
		f.Pause()
	}
}

func (f *ObserverFuncs) OnRecordingProgress(elapsedMs int64, amp int) {
	if f.Progress != nil {
		f.Progress(elapsedMs, amp)
	}
}

func (f *ObserverFuncs) OnStopRecord(path string, rec *store.Record) {
	if f.Stop != nil {
		f.Stop(path, rec)
	}
}

func (f *ObserverFuncs) OnRecordProcessing() {
	if f.Processing != nil {
		f.Processing()
	}
}

func (f *ObserverFuncs) OnRecordFinishProcessing() {
	if f.FinishProcessing != nil {
		f.FinishProcessing()
	}
}

func (f *ObserverFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}
