package model

import (
	"testing"

	"github.com/lib/pq"
)

// 专业/院系名称可能含逗号或引号，入库再读出必须保持原样
func TestSettingsCatalogRoundTrip(t *testing.T) {
	majors := pq.StringArray{"数学与应用数学", "机械设计制造及其自动化", `材料成型及控制工程（含"模具,铸造"方向）`}

	val, err := majors.Value()
	if err != nil {
		t.Fatalf("Value 应成功: %v", err)
	}
	var got pq.StringArray
	if err := got.Scan(val); err != nil {
		t.Fatalf("Scan 应成功: %v", err)
	}
	if len(got) != len(majors) {
		t.Fatalf("期望 %d 个元素，实际=%d", len(majors), len(got))
	}
	for i := range majors {
		if got[i] != majors[i] {
			t.Errorf("第 %d 个元素不符：期望=%q，实际=%q", i, majors[i], got[i])
		}
	}
}
