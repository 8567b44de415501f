package store

import (
	"encoding/base64"
	"time"

	"mockchat/internal/models"
)

const assistantAvatarSVG = `
<svg width="100" height="100" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="meta-avatar-grad" x1="0%" y1="0%" x2="100%" y2="100%">
      <stop offset="0%" style="stop-color:#2193b0;" />
      <stop offset="100%" style="stop-color:#d43bff;" />
    </linearGradient>
  </defs>
  <circle cx="50" cy="50" r="45" stroke="url(#meta-avatar-grad)" stroke-width="10" fill="none" />
</svg>
`

// Seed returns the demo data set with timestamps relative to now.
func Seed(now time.Time) Snapshot {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	avatar := func(seed string) string { return "https://picsum.photos/seed/" + seed + "/100/100" }
	user := func(id, name, seed, email, about string, likes int, online bool, lastSeen time.Duration) models.User {
		u := models.User{
			ID:       id,
			Name:     name,
			Avatar:   avatar(seed),
			Email:    email,
			Role:     models.RoleUser,
			Status:   models.PresenceOffline,
			LastSeen: ago(lastSeen),
			About:    about,
			Notes:    []string{},
			Likes:    likes,
		}
		if online {
			u.Status = models.PresenceOnline
		}
		return u
	}

	owner := user("user-1", "Aanshu Gupta", "alex", "aanshu@example.com", "Frontend developer and hiking enthusiast.", 128, true, 0)
	owner.Role = models.RoleAdmin
	owner.Notes = []string{"Remember to check out the new design system.", "Pick up groceries on the way home."}
	owner.Music = &models.Music{Artist: "Tame Impala", Song: "The Less I Know The Better", AlbumArt: avatar("tame-impala")}

	jordan := user("user-3", "Jordan Lee", "jordan", "jordan@example.com", "Coffee connoisseur.", 73, true, 0)
	jordan.Notes = []string{"Schedule team meeting."}
	jordan.Music = &models.Music{Artist: "Daft Punk", Song: "Around the World", AlbumArt: avatar("daft-punk")}

	assistant := user(models.AssistantUserID, "Meta AI", "", "ai@example.com",
		"My name is Meta AI. Think of me like an assistant who's here to help you learn, plan, and connect. What can I help you with today?",
		999, true, 0)
	assistant.Avatar = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(assistantAvatarSVG))

	morgan := user("user-6", "Morgan Yu", "morgan", "morgan@example.com", "Scientist at TranStar.", 88, false, 5*time.Hour)
	morgan.Music = &models.Music{Artist: "Mick Gordon", Song: "Everything Is Going to Be Okay", AlbumArt: avatar("prey")}

	users := []models.User{
		owner,
		user("user-2", "Sam Smith", "sam", "sam@example.com", "Loves dogs and long walks on the beach.", 42, false, 30*time.Minute),
		jordan,
		user("user-4", "Taylor Green", "taylor", "taylor@example.com", "Just here for the memes.", 12, false, 2*time.Hour),
		assistant,
		user("user-5", "Casey Becker", "casey", "casey@example.com", "Bookworm and aspiring writer.", 25, true, 0),
		morgan,
		user("user-7", "Riley Jones", "riley", "riley@example.com", "Traveling the world.", 150, true, 0),
		user("user-8", "Pat Garcia", "pat", "pat@example.com", "Musician and producer.", 61, false, 24*time.Hour),
		user("user-9", "Jessie Chen", "jessie", "jessie@example.com", "Graphic designer.", 49, true, 0),
		user("user-10", "Chris Williams", "chris", "chris@example.com", "Gamer and streamer.", 201, true, 0),
		user("user-11", "Dana Scully", "scully", "scully@example.com", "FBI Special Agent.", 112, false, 8*time.Hour),
	}

	text := func(id, sender, body string, age time.Duration, read bool) models.Message {
		return models.Message{ID: id, SenderID: sender, Text: body, Timestamp: ago(age), IsRead: read}
	}

	chats := []models.Chat{
		{
			ID:           "chat-saved",
			Type:         models.ChatDirect,
			Participants: []string{"user-1"},
			Messages: []models.Message{
				text("msg-saved-1", models.SystemSenderID, savedMessagesIntro, 24*time.Hour, true),
				text("msg-saved-2", "user-1", "Don't forget to buy milk!", 5*time.Minute, true),
			},
			IsPinned: true,
		},
		{
			ID:           "chat-1",
			Type:         models.ChatDirect,
			Participants: []string{"user-1", "user-2"},
			Messages: []models.Message{
				text("msg-1", "user-2", "Hey Alex! How is it going?", 2*time.Hour, true),
				text("msg-2", "user-1", "Hey Sam! Going great. Almost done with the new feature.", time.Hour, true),
			},
			IsPinned: true,
		},
		{
			ID:           "chat-2",
			Type:         models.ChatGroup,
			Name:         "Project Team",
			Description:  "A team for the new project launch. All project related discussions happen here.",
			Avatar:       avatar("project"),
			Participants: []string{"user-1", "user-3", "user-4"},
			AdminIDs:     []string{"user-1"},
			Messages: []models.Message{
				text("msg-3", "user-3", "Team, let's sync up at 3 PM today. @Aanshu Gupta can you share the link?", 30*time.Minute, true),
				text("msg-4", "user-1", "Sounds good, Jordan.", 28*time.Minute, false),
				{
					ID:        "msg-poll-1",
					SenderID:  "user-1",
					Timestamp: ago(15 * time.Minute),
					IsRead:    true,
					Payload: &models.Poll{
						Question: "What should be our focus for next sprint?",
						Options: []models.PollOption{
							{ID: "opt-1", Text: "UI Polish", Votes: []string{"user-3"}},
							{ID: "opt-2", Text: "New Feature X", Votes: []string{"user-4"}},
							{ID: "opt-3", Text: "Bug Fixes", Votes: []string{}},
						},
					},
				},
				{
					ID:        "msg-gif-1",
					SenderID:  "user-4",
					Timestamp: ago(10 * time.Minute),
					Payload: &models.Attachment{
						Type: models.AttachmentGIF,
						URL:  "https://media.giphy.com/media/JIX9t2j0ZTN9S/giphy.gif",
					},
				},
			},
		},
		{
			ID:           "chat-3",
			Type:         models.ChatDirect,
			Participants: []string{"user-1", models.AssistantUserID},
			Messages: []models.Message{
				text("msg-5", "user-1", "What is the capital of France?", 5*time.Minute, true),
				text("msg-6", models.AssistantUserID, "The capital of France is Paris.", 4*time.Minute, true),
				text("msg-7", models.AssistantUserID, "```js\nconst greeting = \"Hello, World!\";\nconsole.log(greeting);\n```", 3*time.Minute, true),
			},
		},
	}

	statuses := []models.Status{
		{
			ID:        "status-1",
			UserID:    "user-2",
			Type:      models.StatusImage,
			Content:   "https://picsum.photos/seed/status1/1080/1920",
			Timestamp: ago(time.Hour),
			Viewers:   []string{},
			Reactions: []models.Reaction{},
		},
		{
			ID:        "status-2",
			UserID:    "user-3",
			Type:      models.StatusText,
			Content:   "Just deployed the new feature! 🚀",
			Timestamp: ago(30 * time.Minute),
			Viewers:   []string{"user-1"},
			Reactions: []models.Reaction{{UserID: "user-1", Emoji: "🔥"}},
		},
	}

	return Snapshot{Users: users, Chats: chats, Statuses: statuses}
}
