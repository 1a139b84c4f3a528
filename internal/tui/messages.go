package tui

import (
	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

// resultMsg carries a recomputed budget from the pipeline.
type resultMsg struct {
	result engine.Result
}

// resultsClosedMsg reports that the pipeline stopped.
type resultsClosedMsg struct{}

// monthLoadedMsg carries the stored month at startup.
type monthLoadedMsg struct {
	err   error
	month model.Month
}

// editDoneMsg reports the outcome of a budget edit.
type editDoneMsg struct {
	err    error
	status string
}
