package handler

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the public auth routes and the protected quiz routes on r.
// The same set is served at the root and under /api.
func RegisterRoutes(r fiber.Router, auth *AuthHandler, quiz *QuizHandler, protected fiber.Handler) {
	r.Post("/register", auth.Register)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)
	r.Post("/token/refresh", auth.RefreshToken)

	r.Post("/createQuiz", protected, quiz.CreateQuiz)
	r.Get("/quizzes", protected, quiz.ListQuizzes)
	r.Get("/quizzes/:id", protected, quiz.GetQuiz)
	r.Patch("/quizzes/:id", protected, quiz.UpdateQuiz)
	r.Delete("/quizzes/:id", protected, quiz.DeleteQuiz)
}
