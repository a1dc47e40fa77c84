package resume

import (
	"fmt"
	"slices"
	"strings"
)

// ListPath 指向文档中的一个自由文本列表。
type ListPath string

const (
	ListExperience   ListPath = "experience"
	ListEducation    ListPath = "education"
	ListAchievements ListPath = "achievements"
)

// ParseListPath 将路由参数解析为列表路径。
func ParseListPath(raw string) (ListPath, error) {
	switch path := ListPath(raw); path {
	case ListExperience, ListEducation, ListAchievements:
		return path, nil
	default:
		return "", fmt.Errorf("%w: list %q", ErrUnknownField, raw)
	}
}

func (d *Document) list(path ListPath) (*[]string, error) {
	switch path {
	case ListExperience:
		return &d.Experience, nil
	case ListEducation:
		return &d.Education, nil
	case ListAchievements:
		return &d.Achievements, nil
	default:
		return nil, fmt.Errorf("%w: list %q", ErrUnknownField, path)
	}
}

// List 返回指定列表的只读视图。
func (d *Document) List(path ListPath) ([]string, error) {
	l, err := d.list(path)
	if err != nil {
		return nil, err
	}
	return *l, nil
}

// Append 在列表末尾追加一个空条目。
func (d *Document) Append(path ListPath) error {
	l, err := d.list(path)
	if err != nil {
		return err
	}
	*l = append(*l, "")
	return nil
}

// UpdateAt 原样替换下标处的条目，不做裁剪或校验。
func (d *Document) UpdateAt(path ListPath, index int, value string) error {
	l, err := d.list(path)
	if err != nil {
		return err
	}
	if err := checkIndex(string(path), index, len(*l)); err != nil {
		return err
	}
	(*l)[index] = value
	return nil
}

// RemoveAt 删除下标处的条目，后续条目左移。
func (d *Document) RemoveAt(path ListPath, index int) error {
	l, err := d.list(path)
	if err != nil {
		return err
	}
	if err := checkIndex(string(path), index, len(*l)); err != nil {
		return err
	}
	*l = slices.Delete(*l, index, index+1)
	return nil
}

// AddCategory 追加一个技能分类；名称去空白后为空则静默忽略。
func (d *Document) AddCategory(name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	d.SkillCategories = append(d.SkillCategories, SkillCategory{Name: name, Skills: []string{}})
}

// RemoveCategory 删除整个技能分类。
func (d *Document) RemoveCategory(categoryIndex int) error {
	if err := checkIndex("skillCategories", categoryIndex, len(d.SkillCategories)); err != nil {
		return err
	}
	d.SkillCategories = slices.Delete(d.SkillCategories, categoryIndex, categoryIndex+1)
	return nil
}

// AddSkillToCategory 向分类追加一项技能；技能去空白后为空则静默忽略。
func (d *Document) AddSkillToCategory(categoryIndex int, skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil
	}
	if err := checkIndex("skillCategories", categoryIndex, len(d.SkillCategories)); err != nil {
		return err
	}
	category := &d.SkillCategories[categoryIndex]
	category.Skills = append(category.Skills, skill)
	return nil
}

// RemoveSkill 从分类中删除一项技能。
func (d *Document) RemoveSkill(categoryIndex, skillIndex int) error {
	if err := checkIndex("skillCategories", categoryIndex, len(d.SkillCategories)); err != nil {
		return err
	}
	category := &d.SkillCategories[categoryIndex]
	path := fmt.Sprintf("skillCategories[%d].skills", categoryIndex)
	if err := checkIndex(path, skillIndex, len(category.Skills)); err != nil {
		return err
	}
	category.Skills = slices.Delete(category.Skills, skillIndex, skillIndex+1)
	return nil
}
