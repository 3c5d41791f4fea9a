package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/token"
)

func TestHandler_OnlyErrorsCountTowardNumErrors(t *testing.T) {
	t.Parallel()

	h := report.NewHandler(nil)
	pos := token.Position{File: "test.rv", Line: 1, Col: 1}

	h.Warnf(pos, "a warning")
	h.Notef("a note")
	h.Helpf("a help")
	assert.Zero(t, h.NumErrors())
	assert.False(t, h.HasErrors())

	h.Errorf(pos, "an error")
	assert.Equal(t, 1, h.NumErrors())
	assert.True(t, h.HasErrors())
}

func TestHandler_ForwardsEveryDiagnosticToSink(t *testing.T) {
	t.Parallel()

	var got []report.Diagnostic
	sink := report.SinkFunc(func(d report.Diagnostic) { got = append(got, d) })
	h := report.NewHandler(sink)
	pos := token.Position{File: "test.rv", Line: 1, Col: 1}

	h.Errorf(pos, "boom: %d", 42)
	h.Warnf(pos, "careful")

	require.Len(t, got, 2)
	assert.Equal(t, report.SeverityError, got[0].Severity)
	assert.Equal(t, "boom: 42", got[0].Message)
	assert.Equal(t, report.SeverityWarning, got[1].Severity)
}

func TestDiagnostic_ErrorFormatsWithAndWithoutPosition(t *testing.T) {
	t.Parallel()

	withPos := report.Diagnostic{
		Severity: report.SeverityError, Message: "bad thing",
		Pos: token.Position{File: "test.rv", Line: 3, Col: 5}, HasPos: true,
	}
	assert.Equal(t, "test.rv:3:5: error: bad thing", withPos.Error())

	withoutPos := report.Diagnostic{Severity: report.SeverityNote, Message: "fyi"}
	assert.Equal(t, "note: fyi", withoutPos.Error())
}

func TestNilSinkIsLegalAndDiscardsDiagnostics(t *testing.T) {
	t.Parallel()

	h := report.NewHandler(nil)
	assert.NotPanics(t, func() {
		h.Errorf(token.Position{}, "discarded")
	})
	assert.Equal(t, 1, h.NumErrors())
}
