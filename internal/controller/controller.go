// Package controller drives one evaluation round trip: it validates the
// form, toggles the loading and results panels, and hands the ranked
// records to the results renderer.
package controller

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/fmuoria/resume-matcher/internal/client"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/results"
)

// ErrStale is returned by Submit when a newer submission superseded it.
// The view is left to the newer submission.
var ErrStale = errors.New("submission superseded by a newer one")

// View is the UI surface the controller drives
type View interface {
	SetLoading(visible bool)
	SetResultsVisible(visible bool)
	Alert(message string)
}

// Evaluator scores resumes against a job description
type Evaluator interface {
	Evaluate(ctx context.Context, req models.EvaluationRequest) ([]models.MatchRecord, error)
}

// Form is what the user entered
type Form struct {
	JobDescription string
	Resumes        []models.ResumeFile
}

// Controller coordinates submissions
type Controller struct {
	evaluator Evaluator
	view      View
	renderer  *results.Renderer

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// New creates a controller
func New(evaluator Evaluator, view View, renderer *results.Renderer) *Controller {
	return &Controller{
		evaluator: evaluator,
		view:      view,
		renderer:  renderer,
	}
}

// Generation returns the number of submissions that reached the network
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Submit validates the form and, if complete, performs one evaluation.
// Every terminal outcome clears the loading state. A submission made while
// another is in flight cancels the earlier one.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	req := models.EvaluationRequest{
		JobDescription: form.JobDescription,
		Resumes:        form.Resumes,
	}
	if err := client.Validate(req); err != nil {
		c.view.Alert(err.Error())
		return err
	}

	ctx, gen := c.begin(ctx)
	defer c.finish(gen)

	c.view.SetLoading(true)
	c.view.SetResultsVisible(false)

	records, err := c.evaluator.Evaluate(ctx, req)

	if !c.isCurrent(gen) {
		log.Printf("Discarding stale response for submission %d", gen)
		return ErrStale
	}

	if err != nil {
		c.view.SetLoading(false)

		var appErr *client.ApplicationError
		if errors.As(err, &appErr) {
			c.view.Alert("Error: " + appErr.Message)
			return err
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("Submission %d canceled", gen)
			return err
		}

		c.view.Alert("Failed to process: " + err.Error())
		return err
	}

	log.Printf("Submission %d returned %d results", gen, len(records))
	c.renderer.Replace(records)
	c.view.SetLoading(false)
	c.view.SetResultsVisible(true)

	return nil
}

// Cancel aborts the in-flight submission, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Controller) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.cancel = cancel

	return ctx, c.generation
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation == gen && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}
