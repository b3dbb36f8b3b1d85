// Package commands models the manual navigation commands that can preempt
// the automatic presentation sequence at any time.
package commands

import "time"

type Kind string

const (
	KindAdvance Kind = "advance"
	KindRetreat Kind = "retreat"
	KindJump    Kind = "jump"
)

// Command is a navigation command event delivered by an external command
// source (usually recognized voice intents).
type Command interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

type AdvanceCommand struct{ Base }

func (c AdvanceCommand) String() string { return "Advance" }

func NewAdvanceCommand() AdvanceCommand {
	return AdvanceCommand{Base: NewBase(KindAdvance)}
}

type RetreatCommand struct{ Base }

func (c RetreatCommand) String() string { return "Retreat" }

func NewRetreatCommand() RetreatCommand {
	return RetreatCommand{Base: NewBase(KindRetreat)}
}

// JumpCommand targets a slide by 1-indexed ordinal. The ordinal comes from
// free-form command interpretation and is validated by the navigator, not
// here.
type JumpCommand struct {
	Base
	TargetOrdinal int
}

func (c JumpCommand) String() string { return "Jump" }

func NewJumpCommand(targetOrdinal int) JumpCommand {
	return JumpCommand{Base: NewBase(KindJump), TargetOrdinal: targetOrdinal}
}
