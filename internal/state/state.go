package state

import "github.com/spaceai/spaceai/internal/payload"

// MaxPromptHistory caps the durable prompt history.
const MaxPromptHistory = 20

// CredentialExpiredMessage is shown whenever a remote operation fails
// because the configured key is no longer valid. The original UI only
// surfaced it on generate; here it is surfaced on every operation.
const CredentialExpiredMessage = "Authentication expired. Please re-select your key."

// State is the single session record. It is a value: Apply returns a
// new State and never mutates its input, so every transition can be
// tested in isolation.
type State struct {
	HasCredential bool
	Busy          bool
	LastError     string
	History       []Image
	PromptHistory []string
	Selected      payload.Payload
	Editing       bool
	Upscaling     bool
	Resolution    Resolution
	AspectRatio   AspectRatio
}

// New returns the initial session state.
func New() State {
	return State{
		Resolution:  Resolution2K,
		AspectRatio: AspectSquare,
	}
}

// SelectedInHistory returns the history entry whose payload matches the
// currently selected image, if any.
func (s State) SelectedInHistory() (Image, bool) {
	for _, img := range s.History {
		if img.Payload == s.Selected {
			return img, true
		}
	}
	return Image{}, false
}

// Op identifies which remote operation is in flight.
type Op string

const (
	OpGenerate Op = "generate"
	OpEdit     Op = "edit"
	OpUpscale  Op = "upscale"
)

// Action is a sealed set of state transitions.
type Action interface{ isAction() }

type CredentialConfirmed struct{}

// CredentialExpired is raised when the remote model rejects the key.
// Forces HasCredential false; history and selection are untouched.
type CredentialExpired struct{}

type OperationStarted struct{ Op Op }

// GenerateDone carries the finished image; Prompt on the image is the
// raw submitted prompt.
type GenerateDone struct{ Image Image }

// EditDone keeps edit mode active so edits can be chained. RawPrompt is
// the prompt as typed, without the "Edited:" display prefix.
type EditDone struct {
	Image     Image
	RawPrompt string
}

// UpscaleDone forces the working resolution to 4K for subsequent
// generations. Upscales never record a prompt-history entry.
type UpscaleDone struct{ Image Image }

type OperationFailed struct{ Message string }

type ImageUploaded struct{ Payload payload.Payload }

type ImageSelected struct{ Payload payload.Payload }

type EditCancelled struct{}

type ResolutionSet struct{ Resolution Resolution }

type AspectRatioSet struct{ AspectRatio AspectRatio }

type PromptHistoryLoaded struct{ Prompts []string }

func (CredentialConfirmed) isAction() {}
func (CredentialExpired) isAction()   {}
func (OperationStarted) isAction()    {}
func (GenerateDone) isAction()        {}
func (EditDone) isAction()            {}
func (UpscaleDone) isAction()         {}
func (OperationFailed) isAction()     {}
func (ImageUploaded) isAction()       {}
func (ImageSelected) isAction()       {}
func (EditCancelled) isAction()       {}
func (ResolutionSet) isAction()       {}
func (AspectRatioSet) isAction()      {}
func (PromptHistoryLoaded) isAction() {}

// Apply computes the next state for an action.
func Apply(s State, a Action) State {
	switch a := a.(type) {
	case CredentialConfirmed:
		s.HasCredential = true

	case CredentialExpired:
		s.Busy = false
		s.Upscaling = false
		s.HasCredential = false
		s.LastError = CredentialExpiredMessage

	case OperationStarted:
		s.Busy = true
		s.LastError = ""
		s.Upscaling = a.Op == OpUpscale

	case GenerateDone:
		s.Busy = false
		s.History = prepend(s.History, a.Image)
		s.Selected = a.Image.Payload
		s.PromptHistory = pushPrompt(s.PromptHistory, a.Image.Prompt)
		s.Editing = false

	case EditDone:
		s.Busy = false
		s.History = prepend(s.History, a.Image)
		s.Selected = a.Image.Payload
		s.PromptHistory = pushPrompt(s.PromptHistory, a.RawPrompt)

	case UpscaleDone:
		s.Busy = false
		s.Upscaling = false
		s.History = prepend(s.History, a.Image)
		s.Selected = a.Image.Payload
		s.Resolution = Resolution4K

	case OperationFailed:
		s.Busy = false
		s.Upscaling = false
		s.LastError = a.Message

	case ImageUploaded:
		s.Selected = a.Payload
		s.Editing = true
		s.Upscaling = false

	case ImageSelected:
		s.Selected = a.Payload
		s.Editing = true
		s.Upscaling = false

	case EditCancelled:
		s.Editing = false

	case ResolutionSet:
		s.Resolution = a.Resolution

	case AspectRatioSet:
		s.AspectRatio = a.AspectRatio

	case PromptHistoryLoaded:
		s.PromptHistory = capPrompts(a.Prompts)
	}

	return s
}

func prepend(history []Image, img Image) []Image {
	next := make([]Image, 0, len(history)+1)
	next = append(next, img)
	return append(next, history...)
}

// pushPrompt moves prompt to the front, dropping any prior duplicate,
// and enforces the cap.
func pushPrompt(prompts []string, prompt string) []string {
	next := make([]string, 0, len(prompts)+1)
	next = append(next, prompt)
	for _, p := range prompts {
		if p != prompt {
			next = append(next, p)
		}
	}
	return capPrompts(next)
}

func capPrompts(prompts []string) []string {
	if len(prompts) > MaxPromptHistory {
		return prompts[:MaxPromptHistory]
	}
	return prompts
}
