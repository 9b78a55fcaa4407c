package task

import (
	"encoding/binary"
	"reflect"
	"runtime"
)

// spsrUserInterruptsEnabled is the sentinel SPSR value the original
// kernel writes for a fresh user-mode frame with interrupts unmasked.
// Kept as a named constant purely for Frame.Marshal below; Go tasks
// never actually restore a processor status register.
const spsrUserInterruptsEnabled = 0x10

// regSentinel fills the thirteen general-purpose register slots of a
// fresh frame with an easily-recognised debug value, the way the
// original kernel seeds r0-r12 with poison before first activation.
const regSentinel = 0xdeadbeef

// exitTrampolineMarker stands in for "the address of the Exit syscall
// wrapper" that the original writes into lr. Go has no address to take
// here (the goroutine wrapper built by syscall.Dispatcher.Spawn calls
// Exit instead); it exists so Marshal mirrors the original frame
// layout field-for-field.
const exitTrampolineMarker = 0xfffffffe

// Frame documents the initial-stack-frame contract from spec §3: a
// freshly created task's saved frame, from low to high address, is
// spsr, pc, thirteen general registers, then lr pointing at the Exit
// trampoline. The Go runtime owns real goroutine stacks, so Frame is
// never restored into a live register file — it exists so task
// creation can log and test the same bit layout the original
// documents, and so the initial-frame invariant has a concrete,
// inspectable value per task.
type Frame struct {
	SPSR    uint32
	PC      uintptr
	EntryFn string
	Regs    [13]uint32
	LR      uint32
}

// NewInitialFrame builds the frame for a task whose entry point is fn,
// any function value (the kernel's entry points take a *Context, but
// Frame only needs fn's code address and name for debug purposes).
func NewInitialFrame(fn any) Frame {
	f := Frame{
		SPSR: spsrUserInterruptsEnabled,
		PC:   reflect.ValueOf(fn).Pointer(),
		LR:   exitTrampolineMarker,
	}
	if rf := runtime.FuncForPC(f.PC); rf != nil {
		f.EntryFn = rf.Name()
	}
	for i := range f.Regs {
		f.Regs[i] = regSentinel
	}
	return f
}

// Marshal renders the frame as a flat byte layout, low address first,
// matching the field order in spec §3. A debugging aid; the kernel
// itself never calls it.
func (f Frame) Marshal() []byte {
	buf := make([]byte, 4+8+4*len(f.Regs)+4)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], f.SPSR)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(f.PC))
	off += 8
	for _, r := range f.Regs {
		binary.LittleEndian.PutUint32(buf[off:], r)
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], f.LR)
	return buf
}
