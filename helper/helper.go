package helper

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"talk-studio/model"
)

func GetConfig(key string) string {
	// load .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Print("Error loading .env file")
	}
	return os.Getenv(key)
}

var Log *zap.SugaredLogger

// InitLogger sets up the package-global zap logger. Safe to call more
// than once.
func InitLogger() *zap.SugaredLogger {
	if Log != nil {
		return Log
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	Log = logger.Sugar()
	return Log
}

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s",
		GetConfig("DB_HOST"), GetConfig("DB_USER"), GetConfig("DB_PASSWORD"), GetConfig("DB_NAME"))

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		panic("failed to connect database")
	}

	Log.Info("Connection opened to database")
	DB.AutoMigrate(&model.User{}, &model.Speech{}, &model.Analysis{})
	Log.Info("Database migrated")
}

func SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("Talk Studio <%s>", GetConfig("SMTP_FROM")))
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("[Talk Studio] %v", subject))
	m.SetBody("text/html", body)

	smtpPort, _ := strconv.ParseInt(GetConfig("SMTP_PORT"), 10, 32)

	d := gomail.NewDialer(GetConfig("SMTP_HOST"), int(smtpPort), GetConfig("SMTP_USER"), GetConfig("SMTP_PASSWORD"))

	if err := d.DialAndSend(m); err != nil {
		return err
	}

	return nil
}
