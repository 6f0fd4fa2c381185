package inspection

// 运算符名称常量（报告文本中出现的原始写法）
const (
	OpEqualTo            = "EqualTo"
	OpNotEqualTo         = "NotEqualTo"
	OpLessThan           = "LessThan"
	OpLessThanOrEqual    = "LessThanOrEqual"
	OpGreaterThan        = "GreaterThan"
	OpGreaterThanOrEqual = "GreaterThanOrEqual"
	OpBetween            = "Between"
	OpNotBetween         = "NotBetween"
)

// operatorSymbols 运算符到展示符号的映射，只读
var operatorSymbols = map[string]string{
	OpEqualTo:            "=",
	OpNotEqualTo:         "≠",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "≤",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: "≥",
	OpBetween:            "Between",
	OpNotBetween:         "Not Between",
}

// OperatorSymbol returns the display symbol for op. Unknown operators are
// returned unchanged.
func OperatorSymbol(op string) string {
	if sym, ok := operatorSymbols[op]; ok {
		return sym
	}
	return op
}

// 输出列名（顺序固定）
const (
	ColumnDMA              = "DMA"
	ColumnIndex            = "Index"
	ColumnPassingCondition = "Passing Condition"
	ColumnRetrievedValue   = "Retrieved Value"
)

// 输入参数
const (
	ArgumentIndex = "Index"
)

// 数据源默认值
const (
	DefaultDataSourceName  = "Health_Check_Result_Detail"
	DefaultProtocolName    = "Skyline Health Check Manager"
	DefaultProtocolVersion = "Production"
	DefaultParameterID     = 2000
	DefaultIndexColumn     = 2001
	DefaultDetailColumn    = 2005
)

// IndexNotAvailable 行内没有 Index 标记时的占位值
const IndexNotAvailable = "N/A"
