package gesture

import (
	"encoding/json"
	"fmt"

	"github.com/CreativeUnicorns/launcherprefs"
)

// ActionKind discriminates the action a gesture point triggers.
type ActionKind string

// Persisted action kinds. The names are part of the points JSON format.
const (
	ActionLaunchApp         ActionKind = "LaunchApp"
	ActionOpenURL           ActionKind = "OpenUrl"
	ActionOpenFile          ActionKind = "OpenFile"
	ActionNotificationShade ActionKind = "NotificationShade"
	ActionControlPanel      ActionKind = "ControlPanel"
	ActionOpenAppDrawer     ActionKind = "OpenAppDrawer"
)

// Action is what happens when a swipe ends on a point. Only the fields of its
// Kind are meaningful.
type Action struct {
	Kind        ActionKind
	PackageName string
	URL         string
	FilePath    string
	MimeType    string
}

func LaunchApp(packageName string) *Action {
	return &Action{Kind: ActionLaunchApp, PackageName: packageName}
}

func OpenURL(url string) *Action {
	return &Action{Kind: ActionOpenURL, URL: url}
}

// OpenFile opens filePath with the viewer registered for mimeType. An empty
// mimeType lets the platform guess.
func OpenFile(filePath, mimeType string) *Action {
	return &Action{Kind: ActionOpenFile, FilePath: filePath, MimeType: mimeType}
}

func NotificationShade() *Action { return &Action{Kind: ActionNotificationShade} }

func ControlPanel() *Action { return &Action{Kind: ActionControlPanel} }

func OpenAppDrawer() *Action { return &Action{Kind: ActionOpenAppDrawer} }

// Validate reports a missing argument or an unknown kind.
func (a *Action) Validate() error {
	switch a.Kind {
	case ActionLaunchApp:
		if a.PackageName == "" {
			return fmt.Errorf("%w: %s needs a package name", launcherprefs.ErrInvalidValue, a.Kind)
		}
	case ActionOpenURL:
		if a.URL == "" {
			return fmt.Errorf("%w: %s needs a url", launcherprefs.ErrInvalidValue, a.Kind)
		}
	case ActionOpenFile:
		if a.FilePath == "" {
			return fmt.Errorf("%w: %s needs a file path", launcherprefs.ErrInvalidValue, a.Kind)
		}
	case ActionNotificationShade, ActionControlPanel, ActionOpenAppDrawer:
	default:
		return fmt.Errorf("%w: unknown action type %q", launcherprefs.ErrInvalidValue, a.Kind)
	}
	return nil
}

type actionJSON struct {
	Type        ActionKind `json:"type"`
	PackageName string     `json:"packageName,omitempty"`
	URL         string     `json:"url,omitempty"`
	FilePath    string     `json:"filePath,omitempty"`
	MimeType    string     `json:"mimeType,omitempty"`
}

// MarshalJSON writes the action as an object discriminated by "type".
func (a Action) MarshalJSON() ([]byte, error) {
	out := actionJSON{Type: a.Kind}
	switch a.Kind {
	case ActionLaunchApp:
		out.PackageName = a.PackageName
	case ActionOpenURL:
		out.URL = a.URL
	case ActionOpenFile:
		out.FilePath, out.MimeType = a.FilePath, a.MimeType
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler and validates the result.
func (a *Action) UnmarshalJSON(data []byte) error {
	var in actionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded := Action{
		Kind:        in.Type,
		PackageName: in.PackageName,
		URL:         in.URL,
		FilePath:    in.FilePath,
		MimeType:    in.MimeType,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*a = decoded
	return nil
}
