package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(wsHandler *WebSocketHandler, staticHandler *StaticHandler, roomHandler *RoomHandler, deckHandler *DeckHandler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws/{roomId}", wsHandler.HandleWebSocket).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms/{roomId}", roomHandler.GetRoomContext).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}/deck", deckHandler.LinkRoomDeck).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckKey}", deckHandler.ReplaceDeck).Methods(http.MethodPut)
	api.HandleFunc("/decks/{deckKey}", deckHandler.GetDeck).Methods(http.MethodGet)

	router.PathPrefix("/").Handler(staticHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}
