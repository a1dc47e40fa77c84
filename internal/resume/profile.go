package resume

import "fmt"

// ProfileField 是个人信息中可编辑的字段。
type ProfileField string

const (
	ProfileFullName ProfileField = "fullName"
	ProfileEmail    ProfileField = "email"
	ProfilePhone    ProfileField = "phone"
	ProfileImageRef ProfileField = "profileImageRef"
)

// ParseProfileField 将路由参数解析为个人信息字段。
func ParseProfileField(raw string) (ProfileField, error) {
	switch field := ProfileField(raw); field {
	case ProfileFullName, ProfileEmail, ProfilePhone, ProfileImageRef:
		return field, nil
	default:
		return "", fmt.Errorf("%w: profile field %q", ErrUnknownField, raw)
	}
}

// UpdateProfile 更新个人信息字段。邮箱与电话不做格式校验；
// 头像引用传空串表示清除。
func (d *Document) UpdateProfile(field ProfileField, value string) error {
	switch field {
	case ProfileFullName:
		d.FullName = value
	case ProfileEmail:
		d.Email = value
	case ProfilePhone:
		d.Phone = value
	case ProfileImageRef:
		if value == "" {
			d.ProfileImageRef = nil
			return nil
		}
		d.ProfileImageRef = &value
	default:
		return fmt.Errorf("%w: profile field %q", ErrUnknownField, field)
	}
	return nil
}
