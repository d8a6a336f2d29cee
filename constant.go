package gormql

import (
	"github.com/ichaly/gormql/internal"
)

// 内置标量类型名称
const (
	SCALAR_ID        = "ID"
	SCALAR_INT       = "Int"
	SCALAR_FLOAT     = "Float"
	SCALAR_STRING    = "String"
	SCALAR_BOOLEAN   = "Boolean"
	SCALAR_DATE_TIME = "DateTime"
	SCALAR_JSON      = "Json"
)

// 参数名称
const (
	LIMIT    = "limit"
	OFFSET   = "offset"
	ORDER    = "order"
	WHERE    = "where"
	PARANOID = "paranoid"
)

// 嵌套变更的操作标记字段与取值
const (
	OP_TAG    = "_op"
	OP_CREATE = "CREATE"
	OP_UPDATE = "UPDATE"
	OP_DELETE = "DELETE"
	OP_KEEP   = "KEEP"
)

// 嵌套变更中间表属性的载荷键
const THROUGH_KEY = "_through"

// 命名模板代换键
const (
	TOKEN_NAME = "name"
	TOKEN_TYPE = "type"
	TOKEN_BULK = "bulk"
)

// 操作类型对应的命名代换
var typeTokens = map[internal.OperationKind]string{
	internal.FETCH:   "Get",
	internal.COUNT:   "Count",
	internal.CREATE:  "Create",
	internal.UPDATE:  "Update",
	internal.DESTROY: "Delete",
	internal.RESTORE: "Restore",
}

// 占位查询的命名代换
const TYPE_DEFAULT = "Default"

// 批量操作的命名代换值
const BULK_TOKEN = "Bulk"

// 输入类型的保留名称后缀(大小写不敏感)
const SUFFIX_INPUT = "input"

// 预加载连接指令
const (
	DIRECTIVE_JOIN = "join"
	ARG_REQUIRED   = "required"
)

// 排序串中的倒序前缀
const ORDER_REVERSE = "reverse:"

// 内置的数据库到GraphQL的类型映射
var dataTypes = map[string]string{
	// PostgreSQL 类型
	"timestamp with time zone":    SCALAR_DATE_TIME,
	"timestamp without time zone": SCALAR_DATE_TIME,
	"character varying":           SCALAR_STRING,
	"character":                   SCALAR_STRING,
	"char":                        SCALAR_STRING,
	"text":                        SCALAR_STRING,
	"varchar":                     SCALAR_STRING,
	"string":                      SCALAR_STRING,
	"uuid":                        SCALAR_ID,
	"smallint":                    SCALAR_INT,
	"integer":                     SCALAR_INT,
	"int":                         SCALAR_INT,
	"int2":                        SCALAR_INT,
	"int4":                        SCALAR_INT,
	"int8":                        SCALAR_INT,
	"bigint":                      SCALAR_INT,
	"smallserial":                 SCALAR_INT,
	"serial":                      SCALAR_INT,
	"bigserial":                   SCALAR_INT,
	"decimal":                     SCALAR_FLOAT,
	"numeric":                     SCALAR_FLOAT,
	"real":                        SCALAR_FLOAT,
	"float":                       SCALAR_FLOAT,
	"float4":                      SCALAR_FLOAT,
	"float8":                      SCALAR_FLOAT,
	"double precision":            SCALAR_FLOAT,
	"boolean":                     SCALAR_BOOLEAN,
	"bool":                        SCALAR_BOOLEAN,
	"date":                        SCALAR_DATE_TIME,
	"timestamp":                   SCALAR_DATE_TIME,
	"timestamptz":                 SCALAR_DATE_TIME,
	"json":                        SCALAR_JSON,
	"jsonb":                       SCALAR_JSON,

	// MySQL 类型
	"tinyint":    SCALAR_INT,
	"tinyint(1)": SCALAR_BOOLEAN,
	"mediumint":  SCALAR_INT,
	"tinytext":   SCALAR_STRING,
	"mediumtext": SCALAR_STRING,
	"longtext":   SCALAR_STRING,
	"datetime":   SCALAR_DATE_TIME,
	"time":       SCALAR_STRING,
	"year":       SCALAR_INT,
}
