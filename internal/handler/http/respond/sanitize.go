package respond

import (
	"regexp"
)

var (
	// Authorizationヘッダ等のBearerトークン
	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]+`)

	// クエリ文字列やDSNパラメータに載る資格情報
	credentialParamPattern = regexp.MustCompile(`(?i)(api_?key|token|secret|password)=[^&\s]+`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = credentialParamPattern.ReplaceAllString(msg, "$1=****")

	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
