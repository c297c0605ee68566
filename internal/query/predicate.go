package query

import (
	"strings"

	"gorm.io/gorm"
)

// Op 条件运算符
type Op string

const (
	OpEq       Op = "eq"       // 等值匹配
	OpContains Op = "contains" // 子串匹配，不区分大小写
)

// Condition 单个查询条件
type Condition struct {
	Column string
	Op     Op
	Value  interface{}
}

// Predicate 组合查询谓词。所有条件按AND连接，
// 构造时始终以 is_deleted = false 打底，保证常规读取排除已删除行
type Predicate struct {
	conds []Condition
}

// NotDeleted 创建只排除已删除行的最宽谓词
func NotDeleted() *Predicate {
	return &Predicate{
		conds: []Condition{
			{Column: "is_deleted", Op: OpEq, Value: false},
		},
	}
}

// And 追加一个条件
func (p *Predicate) And(c Condition) *Predicate {
	p.conds = append(p.conds, c)
	return p
}

// Conditions 返回全部条件（测试用，不依赖存储层）
func (p *Predicate) Conditions() []Condition {
	return p.conds
}

// Apply 在存储边界把谓词翻译为gorm查询。
// 子串匹配两侧都转小写，保证不同数据库下的LIKE行为一致（不区分大小写）
func (p *Predicate) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range p.conds {
		switch c.Op {
		case OpContains:
			db = db.Where("LOWER("+c.Column+") LIKE ?", "%"+strings.ToLower(c.Value.(string))+"%")
		default:
			db = db.Where(c.Column+" = ?", c.Value)
		}
	}
	return db
}

// ========== 查询对象 ==========

// ResourceQuery 资源列表查询条件，字段全部可选，空字段不参与过滤
type ResourceQuery struct {
	Name     string `form:"name"`      // 名称子串匹配
	Status   string `form:"status"`    // enabled / disabled
	AppScope string `form:"app_scope"` // 预留：所属应用范围，尚未接入调用方上下文
}

// PolicyQuery 策略列表查询条件
type PolicyQuery struct {
	SubjectID  uint `form:"subject_id"`
	ResourceID uint `form:"resource_id"`
}

// 资源状态筛选值
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// ========== 条件表 ==========

// resourceCriterion 资源查询条件到谓词的映射：
// value 返回 (条件值, 是否参与过滤)
type resourceCriterion struct {
	column string
	op     Op
	value  func(q *ResourceQuery) (interface{}, bool)
}

var resourceCriteria = []resourceCriterion{
	{
		column: "name",
		op:     OpContains,
		value: func(q *ResourceQuery) (interface{}, bool) {
			name := strings.TrimSpace(q.Name)
			return name, name != ""
		},
	},
	{
		column: "enabled",
		op:     OpEq,
		value: func(q *ResourceQuery) (interface{}, bool) {
			switch q.Status {
			case StatusEnabled:
				return true, true
			case StatusDisabled:
				return false, true
			}
			return nil, false
		},
	},
	{
		// TODO 接入调用方上下文后按 app_id 过滤，当前为占位，不参与过滤
		column: "app_id",
		op:     OpEq,
		value: func(q *ResourceQuery) (interface{}, bool) {
			return nil, false
		},
	},
}

// BuildResourcePredicate 资源查询条件转谓词
func BuildResourcePredicate(q *ResourceQuery) *Predicate {
	p := NotDeleted()
	if q == nil {
		return p
	}
	for _, c := range resourceCriteria {
		if v, ok := c.value(q); ok {
			p.And(Condition{Column: c.column, Op: c.op, Value: v})
		}
	}
	return p
}

// BuildPolicyPredicate 策略查询条件转谓词
func BuildPolicyPredicate(q *PolicyQuery) *Predicate {
	p := NotDeleted()
	if q == nil {
		return p
	}
	if q.SubjectID > 0 {
		p.And(Condition{Column: "subject_id", Op: OpEq, Value: q.SubjectID})
	}
	if q.ResourceID > 0 {
		p.And(Condition{Column: "resource_id", Op: OpEq, Value: q.ResourceID})
	}
	return p
}
