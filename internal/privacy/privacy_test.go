package privacy

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMaskString(t *testing.T) {
	m := NewMasker()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "phone number",
			in:   "联系电话 13812341234",
			want: "联系电话 138****1234",
		},
		{
			name: "18-digit id card",
			in:   "身份证号 110101199003071234",
			want: "身份证号 110101********1234",
		},
		{
			name: "id card with checksum letter",
			in:   "证件 11010119900307123X",
			want: "证件 110101********123X",
		},
		{
			name: "15-digit id card",
			in:   "老证件 110101900307123",
			want: "老证件 110101******123",
		},
		{
			name: "bank account",
			in:   "收款账户 6222021234567890123",
			want: "收款账户 **** 0123",
		},
		{
			name: "email address",
			in:   "发送至 alice@example.com",
			want: "发送至 a***@example.com",
		},
		{
			name: "no pii untouched",
			in:   "违约金为合同总价的10%",
			want: "违约金为合同总价的10%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MaskString(tt.in); got != tt.want {
				t.Errorf("MaskString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaskStringDoesNotSplitIDIntoPhone(t *testing.T) {
	m := NewMasker()

	// The digit run 13812341234 inside an ID number must not be treated
	// as a phone number.
	got := m.MaskString("421381234123412345")
	if strings.Contains(got, "****4123412345") {
		t.Errorf("phone pattern fired inside an ID number: %q", got)
	}
	if !strings.HasPrefix(got, "421381") {
		t.Errorf("MaskString() = %q, want ID-card style masking", got)
	}
}

func TestMaskJSON(t *testing.T) {
	m := NewMasker()

	raw := json.RawMessage(`{
		"message": "请联系 13812341234",
		"parties": ["bob@corp.cn", "无个人信息"],
		"nested": {"note": "账户 6222021234567890"},
		"amount": 12500.5
	}`)

	masked, err := m.MaskJSON(raw)
	if err != nil {
		t.Fatalf("MaskJSON() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(masked, &doc); err != nil {
		t.Fatalf("masked payload invalid: %v", err)
	}
	if doc["message"] != "请联系 138****1234" {
		t.Errorf("message = %v", doc["message"])
	}
	parties := doc["parties"].([]any)
	if parties[0] != "b***@corp.cn" {
		t.Errorf("parties[0] = %v", parties[0])
	}
	nested := doc["nested"].(map[string]any)
	if nested["note"] != "账户 **** 7890" {
		t.Errorf("nested note = %v", nested["note"])
	}
	if doc["amount"] != 12500.5 {
		t.Errorf("non-string value altered: %v", doc["amount"])
	}
}

func TestInjectCompliance(t *testing.T) {
	t.Run("object payload gains metadata", func(t *testing.T) {
		out := InjectCompliance(json.RawMessage(`{"status":"通过"}`))

		var doc map[string]any
		if err := json.Unmarshal(out, &doc); err != nil {
			t.Fatalf("payload invalid: %v", err)
		}
		meta, _ := doc["metadata"].(map[string]any)
		block, _ := meta["gb_45438_compliance"].(map[string]any)
		if block == nil {
			t.Fatal("gb_45438_compliance block missing")
		}
		if block["model_version"] != ModelVersion {
			t.Errorf("model_version = %v", block["model_version"])
		}
		if block["processor"] != ComplianceProcessor {
			t.Errorf("processor = %v", block["processor"])
		}
	})

	t.Run("existing metadata preserved", func(t *testing.T) {
		out := InjectCompliance(json.RawMessage(`{"metadata":{"trace":"t1"}}`))

		var doc map[string]any
		json.Unmarshal(out, &doc)
		meta := doc["metadata"].(map[string]any)
		if meta["trace"] != "t1" {
			t.Errorf("existing metadata lost: %v", meta)
		}
		if meta["gb_45438_compliance"] == nil {
			t.Error("compliance block missing")
		}
	})

	t.Run("array payload passes through", func(t *testing.T) {
		in := json.RawMessage(`[1,2,3]`)
		if out := InjectCompliance(in); string(out) != string(in) {
			t.Errorf("array altered: %s", out)
		}
	})
}

func TestCheckSensitiveInput(t *testing.T) {
	if kw, hit := CheckSensitiveInput([]byte(`{"query":"请分析病历记录"}`)); !hit || kw != "病历" {
		t.Errorf("CheckSensitiveInput() = %q, %v", kw, hit)
	}
	if kw, hit := CheckSensitiveInput([]byte(`{"field":"Face_ID"}`)); !hit || kw != "face_id" {
		t.Errorf("case-insensitive match failed: %q, %v", kw, hit)
	}
	if _, hit := CheckSensitiveInput([]byte(`{"query":"违约金计算"}`)); hit {
		t.Error("false positive on benign input")
	}
}
