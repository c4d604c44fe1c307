package domain

// TwoFAEnrollment is handed to the user once, when enrollment starts.
type TwoFAEnrollment struct {
	Secret          string // base32
	ProvisioningURI string // otpauth://totp/...
}
