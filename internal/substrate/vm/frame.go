package vm

// CallFrame is pushed by Call and popped by Ret; TailCall mutates the
// topmost frame in place instead of pushing a new one.
type CallFrame struct {
	ReturnIP          int
	StackBase         int
	SavedInstructions []Instruction
	RecursionDepth    int
	Locals            []Value
	ClosedOver        []Value
	Tail              bool
	FrameID           uint64
}
