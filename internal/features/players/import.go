package players

import (
	"encoding/json"
	"fmt"

	"serotonyl.ru/habit-bot/internal/common"
)

// requireSections проверяет, что в документе есть нужные разделы верхнего уровня.
func requireSections(data []byte, names ...string) error {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedSnapshot, err)
	}
	for _, name := range names {
		if raw, ok := sections[name]; !ok || string(raw) == "null" {
			return fmt.Errorf("%w: нет раздела %s", common.ErrMalformedSnapshot, name)
		}
	}
	return nil
}
