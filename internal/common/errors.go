// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки привычек
var (
	// ErrHabitNotFound — привычка с таким ID или номером не найдена
	ErrHabitNotFound = errors.New("привычка не найдена")
	// ErrHabitAlreadyDone — привычка уже выполнена, нужен новый цикл
	ErrHabitAlreadyDone = errors.New("привычка уже выполнена")
	// ErrHabitNotDone — отменять нечего, привычка ещё не выполнена
	ErrHabitNotDone = errors.New("привычка ещё не выполнена")
	// ErrNoFreeSlots — все слоты для привычек заняты
	ErrNoFreeSlots = errors.New("все слоты для привычек заняты")
	// ErrInvalidSchedule — некорректное расписание привычки
	ErrInvalidSchedule = errors.New("некорректное расписание")
	// ErrEmptyTitle — пустое название
	ErrEmptyTitle = errors.New("название не может быть пустым")
)

// Ошибки квестов
var (
	// ErrQuestNotFound — квест не найден
	ErrQuestNotFound = errors.New("квест не найден")
	// ErrQuestNotCompleted — награду можно забрать только у выполненного квеста
	ErrQuestNotCompleted = errors.New("квест ещё не выполнен")
	// ErrQuestNotActive — квест уже выполнен или награда получена
	ErrQuestNotActive = errors.New("квест уже не активен")
	// ErrQuestNotCustom — вручную можно сдавать только свои квесты
	ErrQuestNotCustom = errors.New("системные квесты выполняются автоматически")
	// ErrSystemQuest — системный квест нельзя удалить
	ErrSystemQuest = errors.New("системный квест нельзя удалить")
)

// Ошибки экономики (золото, самоцветы, магазин)
var (
	// ErrInsufficientFunds — не хватает золота или самоцветов
	ErrInsufficientFunds = errors.New("недостаточно средств")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrLevelTooLow — товар доступен с более высокого уровня
	ErrLevelTooLow = errors.New("недостаточный уровень")
	// ErrItemNotFound — товара нет в каталоге
	ErrItemNotFound = errors.New("товар не найден")
	// ErrCategoryRequired — для товара нужно указать категорию
	ErrCategoryRequired = errors.New("нужно указать категорию")
	// ErrCategoryExists — такая категория уже открыта
	ErrCategoryExists = errors.New("такая категория уже есть")
	// ErrHarvestDone — лесной сбор сегодня уже был
	ErrHarvestDone = errors.New("сбор сегодня уже был, лес восстановится завтра")
	// ErrFeatureDisabled — функция выключена в настройках
	ErrFeatureDisabled = errors.New("эта функция сейчас выключена")
)

// Ошибки хранилища
var (
	// ErrMalformedSnapshot — сохранение не удалось разобрать как JSON
	ErrMalformedSnapshot = errors.New("сохранение повреждено")
	// ErrPlayerNotFound — игрок не зарегистрирован
	ErrPlayerNotFound = errors.New("игрок не найден")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
