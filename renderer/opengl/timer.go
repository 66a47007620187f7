package opengl

import (
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// A double buffered GPU timer. Results are read one frame late so that
// querying them never stalls the pipeline.
type timer struct {
	queries [2]uint32
	issued  [2]bool
	current int
	elapsed time.Duration
}

func newTimer() *timer {
	t := &timer{}
	gl.GenQueries(2, &t.queries[0])
	return t
}

func (t *timer) begin() {
	gl.BeginQuery(gl.TIME_ELAPSED, t.queries[t.current])
}

func (t *timer) end() {
	gl.EndQuery(gl.TIME_ELAPSED)
	t.issued[t.current] = true
	t.current ^= 1

	// Collect the result of the query issued during the previous frame
	if !t.issued[t.current] {
		return
	}

	var available int32
	gl.GetQueryObjectiv(t.queries[t.current], gl.QUERY_RESULT_AVAILABLE, &available)
	if available == gl.FALSE {
		return
	}

	var ns uint64
	gl.GetQueryObjectui64v(t.queries[t.current], gl.QUERY_RESULT, &ns)
	t.elapsed = time.Duration(ns)
}

func (t *timer) delete() {
	gl.DeleteQueries(2, &t.queries[0])
}
