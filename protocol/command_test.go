package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_BlankLinesIgnored(t *testing.T) {
	req := require.New(t)

	_, ok := Parse("")
	req.False(ok)
	_, ok = Parse("   ")
	req.False(ok)
}

func TestParse_VerbsAreCaseInsensitive(t *testing.T) {
	req := require.New(t)

	cmd, ok := Parse("login alice")
	req.True(ok)
	req.Equal(Login{Name: "alice"}, cmd)

	cmd, ok = Parse("PiNg")
	req.True(ok)
	req.IsType(Ping{}, cmd)
}

func TestParse_UnknownVerb(t *testing.T) {
	req := require.New(t)

	cmd, ok := Parse("FROBNICATE now")
	req.True(ok)
	req.Equal(Unknown{Verb: "FROBNICATE"}, cmd)
}

func TestParse_Message_SplitsOnFirstPipe(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "subject and content",
			line: "MESSAGE 1 Hello|World",
			want: Post{Group: "1", Subject: "Hello", Content: "World"},
		},
		{
			name: "pipe inside content survives",
			line: "MESSAGE 1 Hello|a|b",
			want: Post{Group: "1", Subject: "Hello", Content: "a|b"},
		},
		{
			name: "no pipe means empty subject",
			line: "MESSAGE 1 just content",
			want: Post{Group: "1", Subject: "", Content: "just content"},
		},
		{
			name: "subject and content are trimmed",
			line: "MESSAGE 1   padded  |  body  ",
			want: Post{Group: "1", Subject: "padded", Content: "body"},
		},
		{
			name: "group by name",
			line: "MESSAGE General hi|there",
			want: Post{Group: "General", Subject: "hi", Content: "there"},
		},
		{
			name: "missing payload",
			line: "MESSAGE 1",
			want: Malformed{Verb: "MESSAGE"},
		},
		{
			name: "missing everything",
			line: "MESSAGE",
			want: Malformed{Verb: "MESSAGE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := Parse(tt.line)
			require.True(t, ok)
			require.Equal(t, tt.want, cmd)
		})
	}
}

func TestParse_GetMessage_KeepsRawArgument(t *testing.T) {
	req := require.New(t)

	cmd, ok := Parse("GET_MESSAGE abc")
	req.True(ok)
	req.Equal(GetMessage{Raw: "abc"}, cmd)
}

func TestParse_Search(t *testing.T) {
	req := require.New(t)

	cmd, ok := Parse("SEARCH 2 release notes")
	req.True(ok)
	req.Equal(Search{Group: "2", Terms: "release notes"}, cmd)

	cmd, ok = Parse("SEARCH 2")
	req.True(ok)
	req.Equal(Malformed{Verb: "SEARCH"}, cmd)
}

func TestRequiresAuth(t *testing.T) {
	req := require.New(t)

	req.False(RequiresAuth(Login{}))
	req.False(RequiresAuth(Groups{}))
	req.False(RequiresAuth(Ping{}))
	req.False(RequiresAuth(Quit{}))
	req.False(RequiresAuth(Unknown{Verb: "X"}))

	req.True(RequiresAuth(Join{}))
	req.True(RequiresAuth(Leave{}))
	req.True(RequiresAuth(Post{}))
	req.True(RequiresAuth(GetMessage{}))
	req.True(RequiresAuth(Users{}))
	req.True(RequiresAuth(Search{}))
}
