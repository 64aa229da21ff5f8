package user

// SecurityCode is a pre-provisioned secret that unlocks Instructor registration.
// Codes are reusable: registering with one does not consume it.
type SecurityCode struct {
	ID   string `json:"_id"`
	Code string `json:"code"`
}
