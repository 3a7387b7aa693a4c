package service

import (
	"fmt"
	"strings"
	"unicode"
)

const maxSlugLength = 80

// slugify 生成 URL 友好的 slug，仅保留小写字母、数字与连字符
func slugify(raw string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniqueSlug 在 base 后追加序号直到 exists 返回 false
func uniqueSlug(base, fallback string, exists func(string) (bool, error)) (string, error) {
	base = slugify(base)
	if base == "" {
		base = fallback
	}
	candidate := base
	for i := 2; i < 1000; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
