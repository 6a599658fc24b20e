// Пакет rbac — роли пользователей Admin UI и проверка допуска.
// Роль приходит от портального API при входе и нигде локально не повышается.
package rbac

// Известные роли.
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// knownRoles — набор допустимых ролей.
var knownRoles = map[string]struct{}{
	RoleViewer: {},
	RoleAdmin:  {},
}

// IsValidRole проверяет, является ли строка допустимой ролью.
// Неизвестная роль из ответа API понижается вызывающим кодом до viewer.
func IsValidRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// Allowed проверяет допуск роли к защищённому маршруту.
// Пустой allowRoles означает «достаточно аутентификации».
// Несовпадение роли трактуется так же, как отсутствие аутентификации:
// существование защищённого контента не раскрывается.
func Allowed(role string, allowRoles []string) bool {
	if len(allowRoles) == 0 {
		return true
	}
	for _, r := range allowRoles {
		if r == role {
			return true
		}
	}
	return false
}
