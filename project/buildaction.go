package project

import "strings"

// BuildAction is the item type that decides how MSBuild treats a file.
type BuildAction int

// Known build actions. The zero value is not a valid action.
const (
	BuildActionFolder BuildAction = iota + 1
	BuildActionCompile
	BuildActionContent
	BuildActionEmbeddedResource
	BuildActionPRIResource
	BuildActionPage
	BuildActionNone
)

var buildActionNames = map[BuildAction]string{
	BuildActionFolder:           "Folder",
	BuildActionCompile:          "Compile",
	BuildActionContent:          "Content",
	BuildActionEmbeddedResource: "EmbeddedResource",
	BuildActionPRIResource:      "PRIResource",
	BuildActionPage:             "Page",
	BuildActionNone:             "None",
}

// AllBuildActions returns every known build action in declaration order.
func AllBuildActions() []BuildAction {
	return []BuildAction{
		BuildActionFolder,
		BuildActionCompile,
		BuildActionContent,
		BuildActionEmbeddedResource,
		BuildActionPRIResource,
		BuildActionPage,
		BuildActionNone,
	}
}

// SelectableBuildActions returns the actions a user may assign to a file (everything except Folder).
func SelectableBuildActions() []BuildAction {
	return AllBuildActions()[1:]
}

// String returns the MSBuild element name of the action.
func (b BuildAction) String() string {
	if name, ok := buildActionNames[b]; ok {
		return name
	}
	return "Unknown"
}

// IsValid reports whether b is one of the known build actions.
func (b BuildAction) IsValid() bool {
	_, ok := buildActionNames[b]
	return ok
}

// ParseBuildAction maps an element name (case-insensitive) to a BuildAction.
func ParseBuildAction(name string) (BuildAction, error) {
	for action, actionName := range buildActionNames {
		if strings.EqualFold(actionName, strings.TrimSpace(name)) {
			return action, nil
		}
	}
	return 0, &ArgumentError{Name: "buildAction"}
}

// buildActionForElement resolves an exact element name, as MSBuild item types are case-sensitive in practice.
func buildActionForElement(local string) (BuildAction, bool) {
	for action, actionName := range buildActionNames {
		if actionName == local {
			return action, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler so actions read naturally in YAML and JSON.
func (b BuildAction) MarshalText() ([]byte, error) {
	if !b.IsValid() {
		return nil, &ArgumentError{Name: "buildAction"}
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BuildAction) UnmarshalText(text []byte) error {
	action, err := ParseBuildAction(string(text))
	if err != nil {
		return err
	}
	*b = action
	return nil
}
