package env

import (
	"net/url"
	"strings"
)

// RedactAPIKey masks a secret, showing only the first 4 and last 4 characters.
func RedactAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// RedactURL masks credentials and secret-looking query
// parameters in a URL string.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		password, hasPassword := u.User.Password()
		if hasPassword {
			u.User = url.UserPassword(u.User.Username(), RedactAPIKey(password))
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k, vs := range q {
			if !IsSensitiveKey(k) {
				continue
			}
			for i := range vs {
				vs[i] = RedactAPIKey(vs[i])
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// sensitiveKeys are lower-cased names whose values are secrets.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"x-api-key":           true,
	"api-key":             true,
	"api_key":             true,
	"x-auth-token":        true,
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
	"token":               true,
	"access_token":        true,
	"password":            true,
	"session_id":          true,
}

// IsSensitiveKey reports whether a header, query parameter or
// log field name holds a secret.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// RedactHeaders masks sensitive header values.
func RedactHeaders(headers map[string]string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if IsSensitiveKey(k) {
			result[k] = RedactAPIKey(v)
		} else {
			result[k] = v
		}
	}
	return result
}
