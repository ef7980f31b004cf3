// Package common — pluralize.go содержит вспомогательные функции
// для правильного склонения русских числительных.
package common

import "fmt"

// pluralForm выбирает форму слова по правилам русского языка.
//
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralForm(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeGold возвращает форму слова «монета».
//
// Примеры:
//
//	PluralizeGold(1)  → "монета"
//	PluralizeGold(3)  → "монеты"
//	PluralizeGold(11) → "монет"
func PluralizeGold(n int64) string {
	return pluralForm(n, "монета", "монеты", "монет")
}

// PluralizeGems возвращает форму слова «самоцвет».
func PluralizeGems(n int64) string {
	return pluralForm(n, "самоцвет", "самоцвета", "самоцветов")
}

// PluralizeDays возвращает форму слова «день».
func PluralizeDays(n int) string {
	return pluralForm(int64(n), "день", "дня", "дней")
}

// PluralizeHabits возвращает форму слова «привычка».
func PluralizeHabits(n int) string {
	return pluralForm(int64(n), "привычка", "привычки", "привычек")
}

// PluralizeTimes возвращает форму слова «раз».
func PluralizeTimes(n int) string {
	return pluralForm(int64(n), "раз", "раза", "раз")
}

// FormatGold создаёт строку вида "150 монет".
func FormatGold(amount int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(amount), PluralizeGold(amount))
}

// FormatGems создаёт строку вида "5 самоцветов".
func FormatGems(amount int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(amount), PluralizeGems(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}
