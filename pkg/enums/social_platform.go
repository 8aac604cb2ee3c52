package enums

import "fmt"

// SocialPlatform is one of the networks an employee profile can link to.
type SocialPlatform string

const (
	SocialPlatformLinkedIn  SocialPlatform = "LinkedIn"
	SocialPlatformTwitter   SocialPlatform = "Twitter"
	SocialPlatformFacebook  SocialPlatform = "Facebook"
	SocialPlatformInstagram SocialPlatform = "Instagram"
	SocialPlatformGitHub    SocialPlatform = "GitHub"
)

var validSocialPlatforms = []SocialPlatform{
	SocialPlatformLinkedIn,
	SocialPlatformTwitter,
	SocialPlatformFacebook,
	SocialPlatformInstagram,
	SocialPlatformGitHub,
}

func (s SocialPlatform) IsValid() bool {
	for _, candidate := range validSocialPlatforms {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSocialPlatform converts raw input into a SocialPlatform.
func ParseSocialPlatform(value string) (SocialPlatform, error) {
	for _, candidate := range validSocialPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid social platform %q", value)
}

// SocialPlatformOptions lists the selectable platforms as plain strings.
func SocialPlatformOptions() []string {
	out := make([]string, 0, len(validSocialPlatforms))
	for _, p := range validSocialPlatforms {
		out = append(out, string(p))
	}
	return out
}
