package presentation

import "github.com/dia-agents/presenter-core/core/commands"

type jumpArguments struct {
	SlideNumber int `json:"slide_number" jsonschema:"required" jsonschema_description:"1-indexed number of the slide to jump to"`
}

// NavigationTools exposes the session's manual navigation surface as
// callable tools for a voice-intent dispatcher. Each tool returns the
// short status phrase the voice interface should speak back.
func NavigationTools(session *Session) []commands.ToolV0 {
	return []commands.ToolV0{
		commands.NewTool("next_slide",
			"Move the presentation to the next slide.",
			func(struct{}) (string, error) {
				return session.Handle(commands.NewAdvanceCommand()), nil
			},
		),
		commands.NewTool("previous_slide",
			"Move the presentation back to the previous slide.",
			func(struct{}) (string, error) {
				return session.Handle(commands.NewRetreatCommand()), nil
			},
		),
		commands.NewTool("goto_slide",
			"Jump the presentation to a specific slide by its number.",
			func(arguments jumpArguments) (string, error) {
				return session.Handle(commands.NewJumpCommand(arguments.SlideNumber)), nil
			},
		),
	}
}
