package workflow

import "strings"

// DomainFromOrigin нормализует Origin-заголовок запроса в доменное имя,
// срезая URI-схему: "https://lol.com" → "lol.com". Чистая функция:
// workflow получает уже готовый домен, разбор протокола остаётся
// на транспортном слое.
func DomainFromOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return ""
	}
	if idx := strings.Index(origin, "://"); idx >= 0 {
		origin = origin[idx+len("://"):]
	}
	return origin
}
