package domain

import (
	"encoding/json"
)

// Screen identifies a dashboard screen. It is also the key of a user's
// permission map.
type Screen string

const (
	// ScreenAll is the wildcard key; paired with PermManage it grants everything.
	ScreenAll Screen = "*"

	ScreenDashboard        Screen = "dashboard"
	ScreenUser             Screen = "user"
	ScreenRole             Screen = "role"
	ScreenTabs             Screen = "tabs"
	ScreenDealer           Screen = "dealer"
	ScreenShopboardRequest Screen = "shopboardRequest"
	ScreenVendorRequest    Screen = "vendorRequest"
	ScreenMarketingRequest Screen = "marketingRequest"
	ScreenPricing          Screen = "pricing"
	ScreenReports          Screen = "reports"
)

var validScreens = []Screen{
	ScreenAll,
	ScreenDashboard,
	ScreenUser,
	ScreenRole,
	ScreenTabs,
	ScreenDealer,
	ScreenShopboardRequest,
	ScreenVendorRequest,
	ScreenMarketingRequest,
	ScreenPricing,
	ScreenReports,
}

// String implements fmt.Stringer.
func (s Screen) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Screen.
func (s Screen) IsValid() bool {
	for _, candidate := range validScreens {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScreen converts raw input into a Screen.
func ParseScreen(value string) (Screen, bool) {
	s := Screen(value)
	return s, s.IsValid()
}

// PermissionTag is a single operation a user may perform on a screen.
type PermissionTag string

const (
	PermRead           PermissionTag = "read"
	PermCreate         PermissionTag = "create"
	PermUpdate         PermissionTag = "update"
	PermDelete         PermissionTag = "delete"
	PermApprovals      PermissionTag = "approvals"
	PermAddComment     PermissionTag = "add_comment"
	PermPrint          PermissionTag = "print"
	PermManualApproval PermissionTag = "manual_approval"
	PermManage         PermissionTag = "manage"
)

var validPermissionTags = []PermissionTag{
	PermRead,
	PermCreate,
	PermUpdate,
	PermDelete,
	PermApprovals,
	PermAddComment,
	PermPrint,
	PermManualApproval,
	PermManage,
}

// IsValid reports whether the value is a known PermissionTag.
func (p PermissionTag) IsValid() bool {
	for _, candidate := range validPermissionTags {
		if candidate == p {
			return true
		}
	}
	return false
}

// Permissions maps a screen to the operations granted on it. A key that is
// present with an empty list is meaningful: it still makes the screen visible
// in navigation.
type Permissions map[Screen][]PermissionTag

// Grants reports whether the map allows tag on screen. The wildcard entry
// {"*": ["manage"]} grants every tag on every screen.
func (p Permissions) Grants(screen Screen, tag PermissionTag) bool {
	if p == nil {
		return false
	}
	if containsTag(p[ScreenAll], PermManage) {
		return true
	}
	return containsTag(p[screen], tag)
}

// HasKey reports whether the screen key is present, whatever its content.
func (p Permissions) HasKey(screen Screen) bool {
	if p == nil {
		return false
	}
	_, ok := p[screen]
	return ok
}

// UnmarshalJSON validates the server's free-form permission object at the
// boundary. Unknown screens and unknown tags are dropped; null lists become
// empty lists so the key stays present.
func (p *Permissions) UnmarshalJSON(b []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Permissions, len(raw))
	for key, tags := range raw {
		screen, ok := ParseScreen(key)
		if !ok {
			continue
		}
		granted := make([]PermissionTag, 0, len(tags))
		for _, t := range tags {
			tag := PermissionTag(t)
			if tag.IsValid() && !containsTag(granted, tag) {
				granted = append(granted, tag)
			}
		}
		out[screen] = granted
	}
	*p = out
	return nil
}

// UnknownPermissionKeys lists the keys of a raw permission object that the
// boundary validation would drop. Used for logging only.
func UnknownPermissionKeys(b []byte) []string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	var unknown []string
	for key := range raw {
		if _, ok := ParseScreen(key); !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func containsTag(tags []PermissionTag, tag PermissionTag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NavigationItem is one entry of the dashboard navigation.
// RequiredPermission is carried for display only; visibility is decided by
// the presence of Key in the user's permission map.
type NavigationItem struct {
	Key                Screen        `json:"key"`
	Name               string        `json:"name"`
	Path               string        `json:"path"`
	Icon               string        `json:"icon"`
	RequiredPermission PermissionTag `json:"requiredPermission"`
}
