package vm

import "github.com/rainbow-alex/burn/internal/module"

// HostOperation is the cooperative host-operation ABI (§6): run(vm, result)
// in spec terms, module.UseOperation.Step in this repo's one concrete
// implementation. A Use opcode's Instruction.UseOp is type-asserted to this
// interface at dispatch time (bytecode leaves it as `any` to avoid a
// bytecode<->vm import cycle).
type HostOperation interface {
	Step(prev module.Step) module.Step
}
