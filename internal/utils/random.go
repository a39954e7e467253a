package utils

import (
	"fmt"
	"math/rand"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var staffRoles = []domain.Role{
	domain.RoleBartender,
	domain.RoleBartender,
	domain.RoleBartender,
	domain.RoleBarback,
	domain.RoleBarback,
	domain.RoleManager,
}

// GenerateRandomStaffMember 生成一个随机员工，调酒师和吧台助理占大头
func GenerateRandomStaffMember(password string, emailDomainName string) (*domain.StaffMember, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := staffRoles[rand.Intn(len(staffRoles))]
	member := &domain.StaffMember{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
		Status:       domain.StaffActive,
	}

	if role == domain.RoleBartender && rand.Intn(3) == 0 {
		member.IsLead = true
	}

	// 一部分员工白天有正职，晚班才有空
	if rand.Intn(4) == 0 {
		member.HasDayJob = true
		member.DayJobCutoff = fmt.Sprintf("%02d:00:00", 17+rand.Intn(3))
	}

	return member, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var venueNames = []string{
	"醉月酒吧", "暗巷精酿", "霓虹角落", "老码头酒馆", "半坡威士忌",
	"糖厂酒吧", "白夜俱乐部", "山丘小馆", "蒸汽酒廊", "回声酒吧",
}

func GenerateRandomVenue() *domain.Venue {
	return &domain.Venue{
		Name:                    venueNames[rand.Intn(len(venueNames))] + fmt.Sprintf("%03d", rand.Intn(1000)),
		Priority:                int32(rand.Intn(10) + 1),
		AvailabilityDeadlineDay: int32(rand.Intn(7) + 20), // 每月 20~26 号截止
		TipPoolEnabled:          rand.Intn(2) == 0,
	}
}

// GenerateRandomShift 在某个门店的某一天生成一个晚班
func GenerateRandomShift(venueID int64, date string) *domain.Shift {
	startHour := 17 + rand.Intn(3)
	endHour := startHour + 4 + rand.Intn(3)
	if endHour > 23 {
		endHour = 23
	}

	bartenders := int32(rand.Intn(3) + 1)
	leads := int32(0)
	if bartenders > 1 {
		leads = 1
	}

	return &domain.Shift{
		VenueID:            venueID,
		Date:               date,
		StartTime:          fmt.Sprintf("%02d:00:00", startHour),
		EndTime:            fmt.Sprintf("%02d:00:00", endHour),
		BartendersRequired: bartenders,
		BarbacksRequired:   int32(rand.Intn(2) + 1),
		LeadsRequired:      leads,
	}
}

// GenerateRandomAvailability 为某员工某月生成一份已锁定的空闲时间表
func GenerateRandomAvailability(staffID int64, year int32, month int32) *domain.Availability {
	av := &domain.Availability{
		StaffID:  staffID,
		Year:     year,
		Month:    month,
		IsLocked: true,
		Windows:  make([]domain.AvailabilityWindow, 0),
	}

	for day := 1; day <= 28; day++ {
		if rand.Intn(2) == 0 {
			continue
		}
		av.Windows = append(av.Windows, domain.AvailabilityWindow{
			Day:       int32(day),
			StartTime: "16:00:00",
			EndTime:   "23:59:59",
		})
	}

	return av
}
