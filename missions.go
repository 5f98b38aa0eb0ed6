package userauth

// Mission names the single purpose a token was issued for. A user can hold
// several live tokens at once, so every guarded operation checks the mission
// claim before anything else.
type Mission string

const (
	// MissionRegistrationConfirmation confirms a freshly registered account.
	MissionRegistrationConfirmation Mission = "registration-confirmation"
	// MissionRecoverPassword authorizes a password change.
	MissionRecoverPassword Mission = "recover-password"
	// MissionConfirmUserDeletion authorizes account deletion.
	MissionConfirmUserDeletion Mission = "confirm-user-deletion"
	// MissionAccessToken is the general API access mission. It is never
	// delivered out-of-band and never blacklisted; it exists only in code
	// and stays off the deliverable allow-list.
	MissionAccessToken Mission = "access-token"
)

// DeliverableMissions is the allow-list of missions a caller may request a
// token for. MissionAccessToken is excluded: access tokens are only issued by
// the login flow.
func DeliverableMissions() []Mission {
	return []Mission{
		MissionRegistrationConfirmation,
		MissionRecoverPassword,
		MissionConfirmUserDeletion,
	}
}

// IsDeliverable reports whether m is on the deliverable allow-list.
func (m Mission) IsDeliverable() bool {
	for _, d := range DeliverableMissions() {
		if m == d {
			return true
		}
	}
	return false
}

// IsValid reports whether m is a known mission, deliverable or not.
func (m Mission) IsValid() bool {
	return m == MissionAccessToken || m.IsDeliverable()
}

func (m Mission) String() string {
	return string(m)
}
