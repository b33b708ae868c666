package main

import (
	"log"
	"os"

	"oracle-assistant-be/internal/model"
	"oracle-assistant-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Running AutoMigrate...")
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Row level security for the hosted store, where the browser-facing API key
	// reaches these tables directly. Fails harmlessly on plain Postgres (no auth schema).
	log.Println("Step 2: Applying row level security policies...")
	policySQL := []string{
		`ALTER TABLE chat_sessions ENABLE ROW LEVEL SECURITY;`,
		`ALTER TABLE messages ENABLE ROW LEVEL SECURITY;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_policies WHERE policyname = 'chat_sessions_owner') THEN
			CREATE POLICY chat_sessions_owner ON chat_sessions USING (user_id = auth.uid()) WITH CHECK (user_id = auth.uid());
		END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_policies WHERE policyname = 'messages_owner') THEN
			CREATE POLICY messages_owner ON messages
			USING (EXISTS (SELECT 1 FROM chat_sessions s WHERE s.id = messages.session_id AND s.user_id = auth.uid()))
			WITH CHECK (EXISTS (SELECT 1 FROM chat_sessions s WHERE s.id = messages.session_id AND s.user_id = auth.uid()));
		END IF; END $$;`,
	}
	for _, sql := range policySQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to apply policy SQL: %v. Continuing...", err)
		}
	}

	log.Println("✅ Success: Database migration completed.")
}
