// Package errcode 定义推送给前端的错误码。
package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：与数据有关，重试无效
// - 5xxx：系统错误，已按重试策略处理
const (
	OK              = 0
	ResourceMissing = 4004
	InvalidSnapshot = 4022
	SystemError     = 5000
)

var texts = map[int]string{
	OK:              "",
	ResourceMissing: "saved resume no longer exists",
	InvalidSnapshot: "saved resume could not be read",
	SystemError:     "preview could not be generated, please try again later",
}

// Text 返回面向用户的错误说明；未知错误码按系统错误处理。
func Text(code int) string {
	if text, ok := texts[code]; ok {
		return text
	}
	return texts[SystemError]
}
