// Package session implements the request orchestrator: the single
// owner of the session state record, mediating generate, edit, and
// upscale against the image provider with mutual exclusion.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spaceai/spaceai/internal/payload"
	"github.com/spaceai/spaceai/internal/prompts"
	"github.com/spaceai/spaceai/internal/provider"
	"github.com/spaceai/spaceai/internal/state"
)

var (
	ErrBusy          = errors.New("another operation is already in flight")
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrNoSelection   = errors.New("no image selected")
	ErrNoSuchImage   = errors.New("no history entry at that position")
	ErrNothingToSave = errors.New("no image selected to export")
)

// UpscaleFallbackPrompt describes an upscaled image whose source was
// never in the history (e.g. a fresh upload).
const UpscaleFallbackPrompt = "Cosmic scene"

// Manager owns the session state. All mutation goes through the state
// reducer at discrete points; reads get a snapshot copy.
type Manager struct {
	mu        sync.Mutex
	st        state.State
	provider  provider.Provider
	prompts   *prompts.Store
	workspace *Workspace
	log       *zap.Logger
	now       func() time.Time
}

type Config struct {
	Provider  provider.Provider
	Prompts   *prompts.Store
	Workspace *Workspace
	Log       *zap.Logger

	// Initial resolution and aspect ratio; zero values fall back to
	// the session defaults (2K, 1:1).
	Resolution  state.Resolution
	AspectRatio state.AspectRatio
}

func NewManager(cfg *Config) *Manager {
	st := state.New()
	if cfg.Resolution.IsValid() {
		st.Resolution = cfg.Resolution
	}
	if cfg.AspectRatio.IsValid() {
		st.AspectRatio = cfg.AspectRatio
	}

	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		st:        st,
		provider:  cfg.Provider,
		prompts:   cfg.Prompts,
		workspace: cfg.Workspace,
		log:       log,
		now:       time.Now,
	}
}

// SetProvider swaps the image provider, e.g. after the user selects a
// new key.
func (m *Manager) SetProvider(p provider.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

// Snapshot returns a copy of the current state. The contained slices
// are never mutated in place by the reducer, so sharing them is safe.
func (m *Manager) Snapshot() state.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

func (m *Manager) apply(a state.Action) {
	m.st = state.Apply(m.st, a)
}

// LoadPromptHistory restores the durable prompt list. Called once at
// startup.
func (m *Manager) LoadPromptHistory(ctx context.Context) error {
	if m.prompts == nil {
		return nil
	}
	saved, err := m.prompts.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load prompt history: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.PromptHistoryLoaded{Prompts: saved})
	return nil
}

// ConfirmCredential marks the credential gate satisfied.
func (m *Manager) ConfirmCredential() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.CredentialConfirmed{})
}

// Generate runs a text-to-image request with the current resolution
// and aspect ratio. Returns ErrBusy while another operation is in
// flight; the attempt then has no state effect.
func (m *Manager) Generate(ctx context.Context, prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ErrEmptyPrompt
	}

	m.mu.Lock()
	if m.st.Busy {
		m.mu.Unlock()
		return ErrBusy
	}
	req := &provider.GenerateRequest{
		Prompt:      trimmed,
		Resolution:  m.st.Resolution,
		AspectRatio: m.st.AspectRatio,
	}
	m.apply(state.OperationStarted{Op: state.OpGenerate})
	m.mu.Unlock()

	img, err := m.provider.Generate(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.fail(state.OpGenerate, err, "Failed to launch generation.")
		return err
	}

	entry := state.Image{
		ID:         m.newID(""),
		Payload:    img,
		Prompt:     prompt,
		Timestamp:  m.now(),
		Resolution: req.Resolution,
	}
	m.apply(state.GenerateDone{Image: entry})
	m.persistPrompts(ctx)
	m.autosave(entry)
	return nil
}

// Edit transforms the currently selected image. Edit mode stays active
// on success so edits can be chained.
func (m *Manager) Edit(ctx context.Context, prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ErrEmptyPrompt
	}

	m.mu.Lock()
	if m.st.Busy {
		m.mu.Unlock()
		return ErrBusy
	}
	source := m.st.Selected
	if source == "" {
		m.mu.Unlock()
		return ErrNoSelection
	}
	resolution := m.st.Resolution
	m.apply(state.OperationStarted{Op: state.OpEdit})
	m.mu.Unlock()

	img, err := m.provider.Edit(ctx, source, trimmed)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.fail(state.OpEdit, err, "Edit failed.")
		return err
	}

	entry := state.Image{
		ID:         m.newID("edit"),
		Payload:    img,
		Prompt:     "Edited: " + prompt,
		Timestamp:  m.now(),
		Resolution: resolution,
	}
	m.apply(state.EditDone{Image: entry, RawPrompt: prompt})
	m.persistPrompts(ctx)
	m.autosave(entry)
	return nil
}

// Upscale re-renders the selected image at the highest tier. The
// describing prompt comes from the matching history entry, or the
// fixed fallback when the selection was never generated here.
func (m *Manager) Upscale(ctx context.Context) error {
	m.mu.Lock()
	if m.st.Busy {
		m.mu.Unlock()
		return ErrBusy
	}
	source := m.st.Selected
	if source == "" {
		m.mu.Unlock()
		return ErrNoSelection
	}
	originalPrompt := UpscaleFallbackPrompt
	if entry, ok := m.st.SelectedInHistory(); ok {
		originalPrompt = entry.Prompt
	}
	m.apply(state.OperationStarted{Op: state.OpUpscale})
	m.mu.Unlock()

	img, err := m.provider.Upscale(ctx, source, originalPrompt)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.fail(state.OpUpscale, err, "Upscaling failed.")
		return err
	}

	entry := state.Image{
		ID:         m.newID("upscale"),
		Payload:    img,
		Prompt:     "4K Upscale: " + originalPrompt,
		Timestamp:  m.now(),
		Resolution: state.Resolution4K,
	}
	m.apply(state.UpscaleDone{Image: entry})
	m.autosave(entry)
	return nil
}

// Upload sets a locally read image as the selection and enters edit
// mode. No history entry is created until an edit or upscale runs.
func (m *Manager) Upload(img payload.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.ImageUploaded{Payload: img})
}

// Select makes the history entry at the 1-based position the active
// image and enters edit mode.
func (m *Manager) Select(position int) (state.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if position < 1 || position > len(m.st.History) {
		return state.Image{}, ErrNoSuchImage
	}
	entry := m.st.History[position-1]
	m.apply(state.ImageSelected{Payload: entry.Payload})
	return entry, nil
}

// CancelEdit leaves edit mode without touching the selection.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.EditCancelled{})
}

func (m *Manager) SetResolution(r state.Resolution) error {
	if !r.IsValid() {
		return fmt.Errorf("invalid resolution %q: must be one of %v", r, state.ValidResolutions())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.ResolutionSet{Resolution: r})
	return nil
}

func (m *Manager) SetAspectRatio(a state.AspectRatio) error {
	if !a.IsValid() {
		return fmt.Errorf("invalid aspect ratio %q: must be one of %v", a, state.ValidAspectRatios())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(state.AspectRatioSet{AspectRatio: a})
	return nil
}

// Export writes the selected image to path, defaulting to the fixed
// export filename.
func (m *Manager) Export(path string) (string, error) {
	m.mu.Lock()
	selected := m.st.Selected
	m.mu.Unlock()

	if selected == "" {
		return "", ErrNothingToSave
	}
	if path == "" {
		path = payload.ExportFilename
	}
	if err := selected.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// fail maps an operation error onto the state record. Credential
// expiry resets the gate; everything else surfaces one visible
// message.
func (m *Manager) fail(op state.Op, err error, fallback string) {
	if errors.Is(err, provider.ErrCredentialExpired) {
		m.log.Warn("credential expired", zap.String("op", string(op)))
		m.apply(state.CredentialExpired{})
		return
	}

	message := err.Error()
	if message == "" {
		message = fallback
	}
	m.log.Warn("operation failed", zap.String("op", string(op)), zap.Error(err))
	m.apply(state.OperationFailed{Message: message})
}

// persistPrompts writes the prompt list through to durable storage.
// A write failure never fails the operation that produced the image.
func (m *Manager) persistPrompts(ctx context.Context) {
	if m.prompts == nil {
		return
	}
	if err := m.prompts.Save(ctx, m.st.PromptHistory); err != nil {
		m.log.Warn("failed to persist prompt history", zap.Error(err))
	}
}

// autosave mirrors the new image into the local workspace; failures
// are logged and ignored.
func (m *Manager) autosave(img state.Image) {
	if m.workspace == nil {
		return
	}
	path, err := m.workspace.Save(img.Payload)
	if err != nil {
		m.log.Warn("failed to autosave image", zap.String("id", img.ID), zap.Error(err))
		return
	}
	m.log.Debug("image autosaved", zap.String("id", img.ID), zap.String("path", path))
}

func (m *Manager) newID(tag string) string {
	ts := strconv.FormatInt(m.now().UnixMilli(), 10)
	if tag == "" {
		return ts
	}
	return tag + "-" + ts
}
