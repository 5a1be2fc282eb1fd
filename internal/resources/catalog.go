package resources

// Static catalog payloads. Abridged statutory text and review material;
// a statutory amendment is an edit here, not a schema change.

func civilCodeContract() any {
	return map[string]any{
		"title": "中华人民共和国民法典 - 合同编 (摘要)",
		"articles": []map[string]string{
			{
				"id":      "585",
				"title":   "违约金",
				"content": "当事人可以约定一方违约时应当根据违约情况向对方支付一定数额的违约金...",
			},
			{
				"id":      "506",
				"title":   "免责条款的效力",
				"content": "合同中的下列免责条款无效: (一) 造成对方人身损害的; (二) 因故意...",
			},
			{
				"id":      "577",
				"title":   "违约责任",
				"content": "当事人一方不履行合同义务或者履行合同义务不符合约定的...",
			},
		},
	}
}

func contractChecklist() any {
	return map[string][]string{
		"基本信息审查": {
			"合同各方主体资格是否合法",
			"合同名称是否准确反映合同性质",
			"合同签订日期和生效日期是否明确",
		},
		"主要条款审查": {
			"合同标的是否明确",
			"数量、质量标准是否清晰",
			"价款或报酬及支付方式是否约定",
			"履行期限、地点和方式是否明确",
		},
		"风险条款审查": {
			"违约责任是否约定",
			"争议解决方式是否明确",
			"保密条款是否完善",
			"知识产权归属是否清晰",
		},
		"合规性审查": {
			"是否违反法律强制性规定",
			"免责条款是否有效",
			"管辖权约定是否合法",
			"是否需要政府审批或备案",
		},
	}
}

func penaltyRules() any {
	return map[string]any{
		"法律依据": "《民法典》第585条",
		"基本原则": "违约金应当与实际损失相当,不得过分高于实际损失",
		"司法实践标准": map[string]string{
			"一般标准": "违约金不超过实际损失的30%",
			"特殊情况": "在某些商事合同中,可能允许更高比例",
			"调整机制": "当事人可以请求法院或仲裁机构调整过高或过低的违约金",
		},
		"计算方法": []string{
			"按合同总价款的百分比计算",
			"按日计算 (如每日万分之五)",
			"按实际损失的倍数计算",
		},
		"注意事项": []string{
			"违约金与损害赔偿不能同时主张",
			"违约金过高的举证责任在违约方",
			"可以约定违约金的上限",
		},
	}
}

func discretionStandards() any {
	return map[string]any{
		"title":  "司法裁量权行使基准",
		"source": "《全国法院民商事审判工作会议纪要》（九民纪要）及相关司法解释",
		"factors": map[string]map[string]string{
			"loss": {
				"name":        "实际损失",
				"description": "违约行为造成的直接损失和可得利益损失",
				"weight":      "基础基准",
			},
			"performance": {
				"name":        "合同履行情况",
				"description": "已履行部分占合同总义务的比例",
				"impact":      "负相关 (履行越多，违约金调整幅度越大)",
			},
			"fault": {
				"name":        "当事人过错程度",
				"description": "违约方的主观恶意程度 (故意、重大过失、轻微过失)",
				"impact":      "正相关 (过错越大，违约金可能越高)",
			},
		},
		"formula_reference": "V_final = f(Loss, Performance, Fault)",
		"guidelines": []string{
			"以实际损失为基础，兼顾合同的履行情况、当事人的过错程度以及预期利益等综合因素",
			"约定的违约金超过造成损失的百分之三十的，一般可以认定为过分高于造成的损失",
		},
	}
}
