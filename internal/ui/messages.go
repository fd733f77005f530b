package ui

import "github.com/teraforge/launcher/internal/update"

// messages holds the localized UI strings per language code. Unknown keys
// and unknown languages fall back to English.
var messages = map[string]map[string]string{
	"en": {
		"title":            "TERA Launcher",
		"phase_idle":       "Idle",
		"phase_file_check": "Checking files...",
		"phase_download":   "Downloading update...",
		"phase_complete":   "Update complete",
		"phase_ready":      "Ready to play",
		"checking":         "Checking for updates...",
		"logging_in":       "Logging in...",
		"launching":        "Starting game...",
		"hashing":          "Generating hash file...",
		"logged_in":        "Logged in",
		"logged_out":       "Not logged in",
		"calculating":      "Calculating...",
		"files":            "files",
		"username":         "Username",
		"password":         "Password",
		"help_main":        "u check for updates • enter play • l login • o logout • g hash file • d log • t language • q quit",
		"help_login":       "enter submit • tab next field • esc cancel",
		update.NoticeServerUnreachable: "Update server is unreachable. Check your connection and try again.",
		update.NoticeUpdateError:       "The update failed. Please try again.",
		update.NoticeLoginFailed:       "Login failed. Check your username and password.",
		update.NoticeLaunchFailed:      "Could not start the game.",
		update.NoticeHashGenFailed:     "Hash file generation failed.",
	},
	"ru": {
		"title":            "TERA Лаунчер",
		"phase_idle":       "Ожидание",
		"phase_file_check": "Проверка файлов...",
		"phase_download":   "Загрузка обновления...",
		"phase_complete":   "Обновление завершено",
		"phase_ready":      "Готово к игре",
		"checking":         "Проверка обновлений...",
		"logging_in":       "Вход...",
		"launching":        "Запуск игры...",
		"hashing":          "Генерация хеш-файла...",
		"logged_in":        "Вход выполнен",
		"logged_out":       "Вход не выполнен",
		"calculating":      "Вычисление...",
		"files":            "файлов",
		"username":         "Имя пользователя",
		"password":         "Пароль",
		"help_main":        "u проверить обновления • enter играть • l вход • o выход • g хеш-файл • d журнал • t язык • q закрыть",
		"help_login":       "enter отправить • tab следующее поле • esc отмена",
		update.NoticeServerUnreachable: "Сервер обновлений недоступен. Проверьте подключение и повторите попытку.",
		update.NoticeUpdateError:       "Не удалось обновить. Повторите попытку.",
		update.NoticeLoginFailed:       "Не удалось войти. Проверьте имя пользователя и пароль.",
		update.NoticeLaunchFailed:      "Не удалось запустить игру.",
		update.NoticeHashGenFailed:     "Не удалось создать хеш-файл.",
	},
}

// tr resolves a message key for the given language, falling back to English
// and finally to the key itself.
func tr(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}
