package usecase

import "github.com/iamvkosarev/cricket-guru-bot/pkg/local"

var (
	TextEnterAPIKey = local.NewSet(
		"Please enter your OpenAI API key!",
		local.NewTrans(local.Rus, "Пожалуйста, введите ваш OpenAI API ключ!"),
	)
	TextErrorFormat = local.NewSet(
		"Error: %s",
		local.NewTrans(local.Rus, "Ошибка: %s"),
	)
	TextEmptyAnswer = local.NewSet(
		"🤷 The model returned an empty answer, try rephrasing the question.",
		local.NewTrans(local.Rus, "🤷 Модель вернула пустой ответ, попробуйте переформулировать вопрос."),
	)
	TextUnexpectedError = local.NewSet(
		"Error: something went wrong, please try again",
		local.NewTrans(local.Rus, "Ошибка: что-то пошло не так, попробуйте ещё раз"),
	)

	TextCommandStart = local.NewSet(
		"Cricket Guru🏏\nYour go-to assistant for cricket stats, trivia, and more!🚀\n\n"+
			"Send /key <your OpenAI API key> to start, then ask me anything about cricket.",
		local.NewTrans(
			local.Rus,
			"Cricket Guru🏏\nВаш помощник по статистике, фактам и истории крикета!🚀\n\n"+
				"Отправьте /key <ваш OpenAI API ключ>, затем задавайте вопросы о крикете.",
		),
	)
	TextCommandHelp = local.NewSet(
		"/key <key> sets your OpenAI API key for this session.\n/new ends the session and starts a new conversation.",
		local.NewTrans(
			local.Rus,
			"/key <ключ> задаёт OpenAI API ключ для этой сессии.\n/new завершает сессию и начинает новый разговор.",
		),
	)
	TextCommandUnknown = local.NewSet(
		"I don't know that command",
		local.NewTrans(local.Rus, "Я не знаю такой команды"),
	)
	TextKeySaved = local.NewSet(
		"API key saved for this session. Ask me anything about cricket!",
		local.NewTrans(local.Rus, "API ключ сохранён для этой сессии. Спрашивайте о крикете!"),
	)
	TextKeyMissing = local.NewSet(
		"Usage: /key <your OpenAI API key>",
		local.NewTrans(local.Rus, "Использование: /key <ваш OpenAI API ключ>"),
	)
	TextNewSession = local.NewSet(
		"Started a new conversation. Your API key was cleared, send /key again.",
		local.NewTrans(local.Rus, "Начат новый разговор. API ключ сброшен, отправьте /key снова."),
	)
	TextSessionExpired = local.NewSet(
		"The previous session expired due to inactivity, a new conversation was started.",
		local.NewTrans(local.Rus, "Предыдущая сессия завершена из-за неактивности, начат новый разговор."),
	)
	TextServerError = local.NewSet(
		"Something wrong with me. Try later",
		local.NewTrans(local.Rus, "Что-то пошло не так. Попробуйте позже"),
	)
)
