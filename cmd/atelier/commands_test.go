package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/bed-atelier/internal/assets"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/configurator"
	"github.com/Faultbox/bed-atelier/internal/proposal"
)

func newShell(t *testing.T) (*shell, *bytes.Buffer, *proposal.MemorySink) {
	t.Helper()
	session := configurator.New(catalog.Builtin(), configurator.Options{Loader: assets.NewManager()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		session.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		session.Close()
	})

	var out bytes.Buffer
	sink := &proposal.MemorySink{}
	return &shell{session: session, sink: sink, out: &out}, &out, sink
}

func TestShellCommands(t *testing.T) {
	sh, out, sink := newShell(t)
	ctx := context.Background()

	for _, line := range []string{
		"material frame boucle",
		"color headboard boucle_bubbly",
		"size width 180",
		"variant 02",
		"view top",
		"save",
		"show",
	} {
		require.NoError(t, sh.exec(ctx, line), line)
	}

	assert.Contains(t, out.String(), "width = 180 cm")
	assert.Regexp(t, `frame\s+boucle/boucle_bubbly`, out.String())

	got := sink.Proposals()
	require.Len(t, got, 1)
	assert.Equal(t, "boucle", got[0].Frame.MaterialType)
	assert.Equal(t, 85.0, got[0].Frame.UnitPrice)
	assert.Equal(t, 180.0, got[0].Dimensions.Width)
	assert.Equal(t, "02", got[0].HeadboardVariant)
	assert.Equal(t, "top", got[0].CameraView)
}

func TestShellErrors(t *testing.T) {
	sh, _, _ := newShell(t)
	ctx := context.Background()

	tests := []string{
		"material",
		"material footboard fabric",
		"material frame velvet",
		"color frame nope",
		"size depth 100",
		"variant 09",
		"view side",
		"orbit a b",
		"dance",
	}
	for _, line := range tests {
		assert.Error(t, sh.exec(ctx, line), line)
	}

	assert.NoError(t, sh.exec(ctx, ""))
	assert.ErrorIs(t, sh.exec(ctx, "quit"), errQuit)
}

func TestShellRunStopsOnQuit(t *testing.T) {
	sh, out, _ := newShell(t)

	err := sh.run(context.Background(), strings.NewReader("help\nstats\nquit\nshow\n"))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "hits=")
	assert.NotContains(t, out.String(), "160 x 100 x 200 cm")
}
