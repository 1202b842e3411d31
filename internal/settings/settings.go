package settings

// Settings are the site-level values embedded in outbound notifications:
// sender identity, admin contact points, and the URLs linked from emails.
type Settings struct {
	SiteName        string
	FrontendURL     string
	AdminBaseURL    string
	AdminEmail      string
	AdminWhatsApp   string
	WhatsAppBaseURL string
}

// Provider hands the current settings to the notification dispatcher.
// The dispatcher calls Current on every dispatch, so a provider may
// implement live reload; the static provider used in production fixes
// the values for the process lifetime.
type Provider interface {
	Current() Settings
}

type staticProvider struct {
	s Settings
}

// NewStaticProvider returns a Provider whose settings never change.
func NewStaticProvider(s Settings) Provider {
	return staticProvider{s: s}
}

func (p staticProvider) Current() Settings {
	return p.s
}
