package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parisxmas/OxiDB/OxiStory/internal/pipeline"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

type session struct {
	mu      sync.Mutex
	engine  *wizard.Engine
	touched time.Time
	// committing is set by Submit before the snapshot is taken and cleared
	// only when the commit fails. done is set by teardown.
	committing bool
	done       bool
}

// IntakeService keeps the wizard instances of people filling the form.
// Each session serializes its own operations.
type IntakeService struct {
	pipeline *pipeline.Pipeline
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	stop chan struct{}
	once sync.Once
}

func NewIntakeService(p *pipeline.Pipeline, ttl time.Duration) *IntakeService {
	return &IntakeService{
		pipeline: p,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
		stop:     make(chan struct{}),
	}
}

// Start opens a session at step 1.
func (s *IntakeService) Start() (string, wizard.View) {
	id := uuid.NewString()
	sess := &session{engine: wizard.NewEngine(), touched: s.now()}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id, sess.engine.View()
}

func (s *IntakeService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// do runs fn on the session's engine. Mutating calls are refused while the
// session is being committed.
func (s *IntakeService) do(id string, mutate bool, fn func(e *wizard.Engine) error) (*wizard.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return nil, ErrSessionNotFound
	}
	if mutate && sess.committing {
		return nil, pipeline.ErrAlreadyInProgress
	}
	sess.touched = s.now()
	if err := fn(sess.engine); err != nil {
		return nil, err
	}
	v := sess.engine.View()
	return &v, nil
}

func (s *IntakeService) View(id string) (*wizard.View, error) {
	return s.do(id, false, func(*wizard.Engine) error { return nil })
}

func (s *IntakeService) Answer(id, field, value string) (*wizard.View, error) {
	return s.do(id, true, func(e *wizard.Engine) error { return e.Answers().Set(field, value) })
}

// Next advances one step or returns the *wizard.ValidationError blocking it.
func (s *IntakeService) Next(id string) (*wizard.View, error) {
	return s.do(id, true, func(e *wizard.Engine) error { return e.Next() })
}

func (s *IntakeService) Previous(id string) (*wizard.View, error) {
	return s.do(id, true, func(e *wizard.Engine) error {
		e.Previous()
		return nil
	})
}

func (s *IntakeService) AddPhoto(id string, f wizard.File) (*wizard.View, error) {
	f.MimeType = DetectContentType(f.Name, f.MimeType, f.Data)
	return s.do(id, true, func(e *wizard.Engine) error {
		_, err := e.Photos().Add(f)
		return err
	})
}

func (s *IntakeService) UpdatePhoto(id string, index int, attr wizard.PhotoAttr, value string) (*wizard.View, error) {
	return s.do(id, true, func(e *wizard.Engine) error { return e.Photos().Update(index, attr, value) })
}

func (s *IntakeService) RemovePhoto(id string, index int) (*wizard.View, error) {
	return s.do(id, true, func(e *wizard.Engine) error { return e.Photos().Remove(index) })
}

// Answers returns a copy of the answers given so far.
func (s *IntakeService) Answers(id string) (map[string]string, error) {
	var out map[string]string
	_, err := s.do(id, false, func(e *wizard.Engine) error {
		out = e.Answers().Map()
		return nil
	})
	return out, err
}

// Preview returns the pending file behind a preview handle.
func (s *IntakeService) Preview(id, previewID string) (wizard.File, error) {
	var f wizard.File
	_, err := s.do(id, false, func(e *wizard.Engine) error {
		var err error
		f, err = e.Photos().Preview(previewID)
		return err
	})
	return f, err
}

// Submit commits the session. On success the session is torn down; on
// failure it is kept as it was so the submission can be retried. A session
// being committed refuses further submits and mutations.
func (s *IntakeService) Submit(ctx context.Context, id string) (*pipeline.Success, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	switch {
	case sess.done:
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	case sess.committing:
		sess.mu.Unlock()
		return nil, pipeline.ErrAlreadyInProgress
	}
	sess.touched = s.now()
	if sess.engine.Step() != wizard.TotalSteps {
		sess.mu.Unlock()
		return nil, ErrNotReady
	}
	if err := sess.engine.Ready(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.committing = true
	snap := sess.engine.Snapshot()
	sess.mu.Unlock()

	res, err := s.pipeline.Commit(ctx, id, snap)
	if err != nil {
		sess.mu.Lock()
		sess.committing = false
		sess.mu.Unlock()
		return nil, err
	}
	s.teardown(id)
	return res, nil
}

// Abandon discards a session and releases its previews. A session being
// committed cannot be abandoned.
func (s *IntakeService) Abandon(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	committing := sess.committing
	sess.mu.Unlock()
	if committing {
		return pipeline.ErrAlreadyInProgress
	}
	s.teardown(id)
	return nil
}

func (s *IntakeService) teardown(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.done = true
	sess.engine.Photos().Close()
	sess.mu.Unlock()
}

// Len is the number of open sessions.
func (s *IntakeService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep abandons sessions idle for longer than the TTL and returns how many
// were dropped. Sessions being committed are left alone.
func (s *IntakeService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var idle []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.touched.Before(cutoff) && !sess.committing {
			idle = append(idle, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()
	for _, id := range idle {
		s.teardown(id)
	}
	return len(idle)
}

// StartJanitor sweeps idle sessions every interval until Close.
func (s *IntakeService) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Printf("Abandoned %d idle intake sessions", n)
				}
			}
		}
	}()
}

// Close stops the janitor and abandons every session.
func (s *IntakeService) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		ids := make([]string, 0, len(s.sessions))
		for id := range s.sessions {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		for _, id := range ids {
			s.teardown(id)
		}
	})
}
