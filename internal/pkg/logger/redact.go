package logger

import "regexp"

// RedactToken masks an access token for safe logging.
// "EAACEdEose0cBA1234567890" → "EAAC***"
// Short tokens (≤4 chars) are fully masked: "abc" → "***"
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) > 4 {
		return token[:4] + "***"
	}
	return "***"
}

var tokenParamRegex = regexp.MustCompile(`(access_token=)[^&\s]+`)

// RedactURL masks the access_token query parameter embedded in a URL
// (or any other string). Other parameters are left untouched.
func RedactURL(s string) string {
	return tokenParamRegex.ReplaceAllString(s, "${1}***")
}
