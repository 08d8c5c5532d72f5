package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

func jsonUnmarshal(raw string, dst *any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("oracle 载荷解析失败: %w", err)
	}
	return nil
}
