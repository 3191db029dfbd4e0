package instagram

import (
	"encoding/base64"
	"encoding/json"
	"regexp"

	"github.com/google/uuid"
)

// Settings is the persisted session blob. It mirrors the device identity the
// platform expects to stay stable across restarts.
type Settings struct {
	UUIDs             DeviceIDs         `json:"uuids"`
	Cookies           map[string]string `json:"cookies"`
	AuthorizationData AuthorizationData `json:"authorization_data"`
	UserAgent         string            `json:"user_agent"`
	LastLogin         int64             `json:"last_login,omitempty"`
}

type DeviceIDs struct {
	PhoneID         string `json:"phone_id"`
	UUID            string `json:"uuid"`
	ClientSessionID string `json:"client_session_id"`
	AdvertisingID   string `json:"advertising_id"`
	AndroidDeviceID string `json:"android_device_id"`
}

type AuthorizationData struct {
	DSUserID  string `json:"ds_user_id"`
	SessionID string `json:"sessionid"`
}

func newDeviceIDs() DeviceIDs {
	return DeviceIDs{
		PhoneID:         uuid.NewString(),
		UUID:            uuid.NewString(),
		ClientSessionID: uuid.NewString(),
		AdvertisingID:   uuid.NewString(),
		AndroidDeviceID: "android-" + uuid.NewString()[:16],
	}
}

var (
	leadingDigits   = regexp.MustCompile(`^\d+`)
	threadIDPattern = regexp.MustCompile(`^\d+$`)
)

// userIDFromSession extracts the numeric user id every sessionid starts with.
func userIDFromSession(sessionID string) string {
	return leadingDigits.FindString(sessionID)
}

// bearer builds the Authorization header value the mobile API accepts.
func (s *Settings) bearer() string {
	raw, _ := json.Marshal(s.AuthorizationData)
	return "Bearer IGT:2:" + base64.StdEncoding.EncodeToString(raw)
}
