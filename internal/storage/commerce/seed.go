package commerce

import (
	"encoding/json"
	"fmt"
	"os"
)

// Seed 种子数据文件格式
type Seed struct {
	Shops    []*Shop    `json:"shops"`
	Products []*Product `json:"products"`
	Orders   []*Order   `json:"orders"`
}

// LoadSeedFile 读取 JSON 种子数据
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取种子数据失败: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("解析种子数据失败: %w", err)
	}
	return &seed, nil
}
