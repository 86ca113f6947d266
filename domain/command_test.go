package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand_Msg_Keeps_Embedded_Whitespace(t *testing.T) {
	req := require.New(t)

	// When a private message with free text is parsed
	cmd := ParseCommand("/msg bob hello there, how are you?")

	// Then the final token keeps its whitespace
	msg, ok := cmd.(Msg)
	req.True(ok)
	req.Equal("bob", msg.Target)
	req.Equal("hello there, how are you?", msg.Text)
}

func TestParseCommand_Msg_Missing_Arguments(t *testing.T) {
	req := require.New(t)

	msg, ok := ParseCommand("/msg bob").(Msg)
	req.True(ok)
	req.Equal("bob", msg.Target)
	req.Empty(msg.Text)

	msg, ok = ParseCommand("/msg").(Msg)
	req.True(ok)
	req.Empty(msg.Target)
}

func TestParseCommand_Verb_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)

	_, ok := ParseCommand("/HELP").(Help)
	req.True(ok)

	dnd, ok := ParseCommand("/DnD ON").(Dnd)
	req.True(ok)
	req.Equal("on", dnd.Mode)
}

func TestParseCommand_Me_Free_Text(t *testing.T) {
	req := require.New(t)

	me, ok := ParseCommand("/me waves at everyone").(Me)
	req.True(ok)
	req.Equal("waves at everyone", me.Text)

	me, ok = ParseCommand("/me").(Me)
	req.True(ok)
	req.Empty(me.Text)
}

func TestParseCommand_Unknown_Verb_Is_A_Variant_Not_An_Error(t *testing.T) {
	req := require.New(t)

	unknown, ok := ParseCommand("/frobnicate now").(Unknown)
	req.True(ok)
	req.Equal("frobnicate", unknown.Word)
}

func TestParseCommand_Simple_Verbs(t *testing.T) {
	req := require.New(t)

	_, ok := ParseCommand("/users").(Users)
	req.True(ok)
	_, ok = ParseCommand("/clear").(Clear)
	req.True(ok)
	_, ok = ParseCommand("/history").(History)
	req.True(ok)
	_, ok = ParseCommand("/quit").(Quit)
	req.True(ok)
}
