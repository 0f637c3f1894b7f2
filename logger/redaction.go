package logger

import (
	"io"
	"regexp"
	"strings"
)

// 日志里可能混入交易所API密钥或私钥，落盘前统一打码
var (
	skKeyPattern    = regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`)
	namedKeyPattern = regexp.MustCompile(`key_[A-Za-z0-9_-]{16,}`)
	hexKeyPattern   = regexp.MustCompile(`0x[0-9a-fA-F]{64}`)
	rawHexPattern   = regexp.MustCompile(`\b[0-9a-fA-F]{64,}\b`)
)

// RedactAPIKey 打码单个密钥，保留首尾各4字符，总长度不变
// 8字符以内的密钥全部打码
func RedactAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// RedactSensitiveInfo 打码文本中的密钥片段
// 识别 sk- / key_ 前缀密钥和64位十六进制私钥（带或不带 0x）
func RedactSensitiveInfo(text string) string {
	text = skKeyPattern.ReplaceAllStringFunc(text, redactWithPrefix(3))
	text = namedKeyPattern.ReplaceAllStringFunc(text, redactWithPrefix(4))
	text = hexKeyPattern.ReplaceAllStringFunc(text, redactWithPrefix(2))
	text = rawHexPattern.ReplaceAllStringFunc(text, redactWithPrefix(0))
	return text
}

// redactingWriter 全局日志的最后一道打码：每行日志经 RedactSensitiveInfo
// 后再写入底层输出，场所错误、配置转储里混入的密钥在这里统一拦截
type redactingWriter struct {
	out io.Writer
}

func (w redactingWriter) Write(p []byte) (int, error) {
	if _, err := w.out.Write([]byte(RedactSensitiveInfo(string(p)))); err != nil {
		return 0, err
	}
	// 打码可能改变长度，对上游按原始长度汇报写入成功
	return len(p), nil
}

// redactWithPrefix 保留前缀和其后4字符、末尾4字符，中间固定10个星号
func redactWithPrefix(prefixLen int) func(string) string {
	return func(m string) string {
		keep := prefixLen + 4
		if len(m) <= keep+4 {
			return strings.Repeat("*", len(m))
		}
		return m[:keep] + "**********" + m[len(m)-4:]
	}
}
