package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: moimlink <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("[MAIL] send failed (to=%s): %v", strings.Join(to, ","), err)
		}
	}()
}

// SendGroupApproved tells a group owner their group went live.
func (s *MailService) SendGroupApproved(to, groupTitle, groupLink string) {
	subject := fmt.Sprintf("모임 '%s' 등록이 완료되었습니다", groupTitle)
	body := fmt.Sprintf(
		`<p>모임 <strong>%s</strong> 등록이 완료되었습니다.</p><p><a href="%s">모임 페이지 보기</a></p>`,
		groupTitle, groupLink)
	s.sendAsync([]string{to}, subject, body)
}

// SendNoticePosted tells a group member a new notice was posted.
func (s *MailService) SendNoticePosted(to, groupTitle, noticeTitle, link string) {
	subject := fmt.Sprintf("[%s] 새 공지: %s", groupTitle, noticeTitle)
	body := fmt.Sprintf(
		`<p><strong>%s</strong> 모임에 새 공지가 올라왔습니다.</p><p>%s</p><p><a href="%s">공지 확인하기</a></p>`,
		groupTitle, noticeTitle, link)
	s.sendAsync([]string{to}, subject, body)
}
