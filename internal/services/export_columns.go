package services

import (
	"strconv"
	"strings"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/export"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/storage"
)

const exportDateLayout = "2006-01-02"
const exportTimeLayout = "2006-01-02 15:04"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func consumptionLabel(s constants.ConsumptionStatus) string {
	if label, ok := constants.ConsumptionLabels[s]; ok {
		return label
	}
	return string(s)
}

var ParticipantColumns = []export.Column[gormModels.Participant]{
	{Label: "ID", Value: func(p gormModels.Participant) string { return strconv.FormatUint(uint64(p.ID), 10) }},
	{Label: "คำนำหน้า", Value: func(p gormModels.Participant) string { return p.Prefix }},
	{Label: "ชื่อ", Value: func(p gormModels.Participant) string { return p.FirstName }},
	{Label: "นามสกุล", Value: func(p gormModels.Participant) string { return p.LastName }},
	{Label: "วันเกิด", Value: func(p gormModels.Participant) string { return p.Birthday.Format(exportDateLayout) }},
	{Label: "ที่อยู่", Value: func(p gormModels.Participant) string { return p.AddressLine }},
	{Label: "ตำบล", Value: func(p gormModels.Participant) string { return p.Subdistrict }},
	{Label: "อำเภอ", Value: func(p gormModels.Participant) string { return p.District }},
	{Label: "จังหวัด", Value: func(p gormModels.Participant) string { return p.Province }},
	{Label: "รหัสไปรษณีย์", Value: func(p gormModels.Participant) string { return p.ZipCode }},
	{Label: "เบอร์โทรศัพท์", Value: func(p gormModels.Participant) string { return p.Phone }},
	{Label: "การดื่มแอลกอฮอล์", Value: func(p gormModels.Participant) string { return consumptionLabel(p.AlcoholConsumption) }},
	{Label: "ความถี่ในการดื่ม", Value: func(p gormModels.Participant) string { return deref(p.DrinkingFrequency) }},
	{Label: "ระยะเวลาที่ตั้งใจ", Value: func(p gormModels.Participant) string { return deref(p.IntentPeriod) }},
	{Label: "ค่าใช้จ่ายต่อเดือน", Value: func(p gormModels.Participant) string {
		if p.MonthlyExpense == nil {
			return ""
		}
		return strconv.FormatInt(*p.MonthlyExpense, 10)
	}},
	{Label: "แรงจูงใจ", Value: func(p gormModels.Participant) string { return strings.Join(p.Motivations, ", ") }},
	{Label: "กลุ่ม", Value: func(p gormModels.Participant) string {
		if p.Group == nil {
			return ""
		}
		return p.Group.Name
	}},
	{Label: "วันที่ลงทะเบียน", Value: func(p gormModels.Participant) string { return p.CreatedAt.Format(exportTimeLayout) }},
}

// FormReturnColumns renders image keys as URLs of the active store.
func FormReturnColumns(store storage.ImageStore) []export.Column[gormModels.FormReturn] {
	imageURL := func(key string) string {
		if key == "" {
			return ""
		}
		return store.URL(key)
	}
	return []export.Column[gormModels.FormReturn]{
		{Label: "ID", Value: func(f gormModels.FormReturn) string { return strconv.FormatUint(uint64(f.ID), 10) }},
		{Label: "ชื่อองค์กร", Value: func(f gormModels.FormReturn) string { return f.OrganizationName }},
		{Label: "ประเภทองค์กร", Value: func(f gormModels.FormReturn) string { return f.OrganizationType }},
		{Label: "ชื่อผู้ประสานงาน", Value: func(f gormModels.FormReturn) string { return f.FirstName }},
		{Label: "นามสกุลผู้ประสานงาน", Value: func(f gormModels.FormReturn) string { return f.LastName }},
		{Label: "ที่อยู่", Value: func(f gormModels.FormReturn) string { return f.AddressLine }},
		{Label: "อำเภอ", Value: func(f gormModels.FormReturn) string { return f.District }},
		{Label: "จังหวัด", Value: func(f gormModels.FormReturn) string { return f.Province }},
		{Label: "รหัสไปรษณีย์", Value: func(f gormModels.FormReturn) string { return f.ZipCode }},
		{Label: "เบอร์โทรศัพท์", Value: func(f gormModels.FormReturn) string { return f.Phone }},
		{Label: "จำนวนผู้ลงนาม", Value: func(f gormModels.FormReturn) string { return strconv.Itoa(f.SignerCount) }},
		{Label: "รูปภาพ 1", Value: func(f gormModels.FormReturn) string { return imageURL(f.Image1) }},
		{Label: "รูปภาพ 2", Value: func(f gormModels.FormReturn) string { return imageURL(f.Image2) }},
		{Label: "วันที่ส่ง", Value: func(f gormModels.FormReturn) string { return f.CreatedAt.Format(exportTimeLayout) }},
	}
}

var GroupColumns = []export.Column[gormModels.Group]{
	{Label: "ID", Value: func(g gormModels.Group) string { return strconv.FormatUint(uint64(g.ID), 10) }},
	{Label: "ชื่อกลุ่ม", Value: func(g gormModels.Group) string { return g.Name }},
	{Label: "รายละเอียด", Value: func(g gormModels.Group) string { return deref(g.Description) }},
	{Label: "จำนวนผู้เข้าร่วม", Value: func(g gormModels.Group) string { return strconv.FormatInt(g.ParticipantCount, 10) }},
}
