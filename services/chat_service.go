package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"campus-event-system/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// chatClient wraps a websocket connection with its identity and a write
// lock, since broadcasts can reach a connection from several reader
// goroutines at once.
type chatClient struct {
	conn     *websocket.Conn
	userID   string
	username string
	writeMu  sync.Mutex
}

func (cl *chatClient) send(v any) {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	if err := cl.conn.WriteJSON(v); err != nil {
		log.Printf("Chat write error: %v", err)
	}
}

// ChatService relays team chat over websockets. Subscriptions live in an
// explicit in-memory registry keyed by team id; they are lost on restart,
// messages themselves are persisted and replayed via the history endpoint.
type ChatService struct {
	DB *gorm.DB

	mu    sync.RWMutex
	rooms map[string]map[*chatClient]bool
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db, rooms: make(map[string]map[*chatClient]bool)}
}

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleConnection runs the read loop for one authenticated participant.
// The upgrade middleware stores identity in conn locals before this runs.
func (s *ChatService) HandleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	username, _ := conn.Locals("username").(string)

	client := &chatClient{conn: conn, userID: userID, username: username}
	defer s.dropClient(client)

	for {
		var evt wsEvent
		if err := conn.ReadJSON(&evt); err != nil {
			return
		}
		switch evt.Event {
		case "join_team":
			s.handleJoin(client, evt.Data)
		case "send_message":
			s.handleMessage(client, evt.Data)
		case "typing":
			s.handleTyping(client, evt.Data)
		default:
			client.send(map[string]any{"event": "error", "data": map[string]any{"message": "Unknown event"}})
		}
	}
}

type joinPayload struct {
	TeamID string `json:"teamId"`
}

func (s *ChatService) handleJoin(client *chatClient, raw json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.TeamID == "" {
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "teamId is required"}})
		return
	}

	var team models.Team
	if err := s.DB.Preload("Members").First(&team, "id = ?", payload.TeamID).Error; err != nil {
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "Team not found"}})
		return
	}
	if !team.HasMember(client.userID) {
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "Not a member of this team"}})
		return
	}

	s.mu.Lock()
	if s.rooms[payload.TeamID] == nil {
		s.rooms[payload.TeamID] = make(map[*chatClient]bool)
	}
	s.rooms[payload.TeamID][client] = true
	s.mu.Unlock()

	client.send(map[string]any{"event": "joined_team", "data": map[string]any{"teamId": payload.TeamID}})
}

type messagePayload struct {
	TeamID string `json:"teamId"`
	Text   string `json:"text"`
}

func (s *ChatService) handleMessage(client *chatClient, raw json.RawMessage) {
	var payload messagePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.TeamID == "" || payload.Text == "" {
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "teamId and text are required"}})
		return
	}
	if !s.subscribed(client, payload.TeamID) {
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "Join the team room first"}})
		return
	}

	msg := models.ChatMessage{
		ID:         uuid.NewString(),
		TeamID:     payload.TeamID,
		SenderID:   client.userID,
		SenderName: client.username,
		Text:       payload.Text,
		CreatedAt:  time.Now(),
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("Persist chat message error: %v", err)
		client.send(map[string]any{"event": "error", "data": map[string]any{"message": "Failed to send message"}})
		return
	}

	// Persist first, then fan out to everyone in the room, sender included.
	s.broadcast(payload.TeamID, nil, map[string]any{"event": "receive_message", "data": msg})
}

func (s *ChatService) handleTyping(client *chatClient, raw json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.TeamID == "" {
		return
	}
	if !s.subscribed(client, payload.TeamID) {
		return
	}
	// Transient: never persisted, sender excluded.
	s.broadcast(payload.TeamID, client, map[string]any{
		"event": "user_typing",
		"data":  map[string]any{"teamId": payload.TeamID, "username": client.username},
	})
}

func (s *ChatService) subscribed(client *chatClient, teamID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[teamID][client]
}

// broadcast fans a payload out to every subscriber of a room, optionally
// skipping one client.
func (s *ChatService) broadcast(teamID string, skip *chatClient, payload map[string]any) {
	s.mu.RLock()
	clients := make([]*chatClient, 0, len(s.rooms[teamID]))
	for cl := range s.rooms[teamID] {
		if cl != skip {
			clients = append(clients, cl)
		}
	}
	s.mu.RUnlock()

	for _, cl := range clients {
		cl.send(payload)
	}
}

// dropClient removes a disconnected client from every room it joined.
func (s *ChatService) dropClient(client *chatClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for teamID, room := range s.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(s.rooms, teamID)
		}
	}
}
