package agenttools

// ParamType is the vocabulary a self-describing tool parameter
// descriptor draws from, so a text-based dispatcher can reconstruct
// typed arguments from stringly-typed extractions.
type ParamType string

const (
	ParamString  ParamType = "String"
	ParamInteger ParamType = "Integer"
	ParamBoolean ParamType = "Boolean"
	ParamFloat   ParamType = "Float"
	ParamList    ParamType = "List"
	ParamObject  ParamType = "Object"
	ParamEnum    ParamType = "Enum"
)

// Param describes one named argument of a Tool.
type Param struct {
	Name        string
	Type        ParamType
	ElementType ParamType // for List<T>
	Required    bool
	Description string
	EnumValues  []string // for Enum
}

// Descriptor is the self-describing shape of one agent tool.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Result is the uniform {success, data|error} shape every tool
// returns.
type Result struct {
	Success bool
	Data    string
	Error   string
}

func ok(data string) Result  { return Result{Success: true, Data: data} }
func fail(msg string) Result { return Result{Success: false, Error: msg} }
